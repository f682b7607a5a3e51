package sqsclient

import (
	"context"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"simplesqs.client/pkg/telemetry"
)

// SQSAPI is the subset of the AWS SQS client the Client depends on.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
	PurgeQueue(ctx context.Context, params *sqs.PurgeQueueInput, optFns ...func(*sqs.Options)) (*sqs.PurgeQueueOutput, error)
}

// Message is a single message received from the queue. Attributes carries
// the string-valued message attributes, including propagated trace context.
// ReceiveCount is the service's ApproximateReceiveCount, 0 when absent.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
	Attributes    map[string]string
	ReceiveCount  int
}

// ReceiveOptions tunes a ReceiveMessages call. Zero values fall back to the
// defaults below. MaxAttempts is the total number of receive attempts; the
// default of 1 means a failed receive is not retried.
type ReceiveOptions struct {
	MaxMessages       int32 // default 10
	VisibilityTimeout int32 // seconds, default 60
	WaitTime          int32 // seconds of long polling, default 10
	MaxAttempts       uint  // default 1
}

// Client is a queue client bound to a single queue URL. It is safe for
// concurrent use. Close releases the client; every operation on a closed
// client fails with ErrNotConnected.
type Client struct {
	queueURL string

	mu     sync.RWMutex
	api    SQSAPI
	closed bool
}

// NewFromAPI wraps an already constructed SQS transport. It is the
// injection point for callers that manage their own SDK config and for
// tests that substitute a fake transport.
func NewFromAPI(api SQSAPI, queueURL string) *Client {
	return &Client{api: api, queueURL: queueURL}
}

// QueueURL returns the queue this client is bound to.
func (c *Client) QueueURL() string { return c.queueURL }

func (c *Client) transport() (SQSAPI, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrNotConnected
	}
	return c.api, nil
}

// SendMessage sends body unmodified as the message payload and returns the
// message id assigned by the service. Serializing structured payloads is the
// caller's job. A failed send is wrapped in *TransportError and leaves the
// client connected.
func (c *Client) SendMessage(ctx context.Context, body string) (string, error) {
	api, err := c.transport()
	if err != nil {
		return "", err
	}

	out, err := api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(c.queueURL),
		MessageBody:       aws.String(body),
		MessageAttributes: telemetry.InjectTraceContext(ctx),
	})
	if err != nil {
		return "", &TransportError{Op: "send message", Err: err}
	}

	log.Ctx(ctx).Debug().Str("message_id", aws.ToString(out.MessageId)).Msg("Message sent")
	return aws.ToString(out.MessageId), nil
}

// ReceiveMessages long-polls the queue for up to opts.MaxMessages messages.
// With MaxAttempts > 1 a failed receive is retried with exponential backoff
// before the last error is surfaced as a *TransportError.
func (c *Client) ReceiveMessages(ctx context.Context, opts ReceiveOptions) ([]Message, error) {
	api, err := c.transport()
	if err != nil {
		return nil, err
	}

	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 10
	}
	if opts.VisibilityTimeout <= 0 {
		opts.VisibilityTimeout = 60
	}
	if opts.WaitTime <= 0 {
		opts.WaitTime = 10
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 1
	}

	receive := func() (*sqs.ReceiveMessageOutput, error) {
		return api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:                    aws.String(c.queueURL),
			MaxNumberOfMessages:         opts.MaxMessages,
			VisibilityTimeout:           opts.VisibilityTimeout,
			WaitTimeSeconds:             opts.WaitTime,
			MessageAttributeNames:       []string{"All"},
			MessageSystemAttributeNames: []types.MessageSystemAttributeName{types.MessageSystemAttributeNameAll},
		})
	}

	out, err := backoff.Retry(ctx, receive,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(opts.MaxAttempts),
	)
	if err != nil {
		return nil, &TransportError{Op: "receive messages", Err: err}
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msg := Message{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		}
		if raw, ok := m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]; ok {
			if n, convErr := strconv.Atoi(raw); convErr == nil {
				msg.ReceiveCount = n
			}
		}
		if len(m.MessageAttributes) > 0 {
			msg.Attributes = make(map[string]string, len(m.MessageAttributes))
			for k, v := range m.MessageAttributes {
				msg.Attributes[k] = aws.ToString(v.StringValue)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// DeleteMessage removes a received message from the queue using its receipt
// handle, acknowledging that it has been processed.
func (c *Client) DeleteMessage(ctx context.Context, receiptHandle string) error {
	api, err := c.transport()
	if err != nil {
		return err
	}

	_, err = api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return &TransportError{Op: "delete message", Err: err}
	}
	return nil
}

// ChangeMessageVisibility reschedules a received message by adjusting its
// visibility timeout, in seconds. Consumers use it to delay a retry.
func (c *Client) ChangeMessageVisibility(ctx context.Context, receiptHandle string, timeout int32) error {
	api, err := c.transport()
	if err != nil {
		return err
	}

	_, err = api.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(c.queueURL),
		ReceiptHandle:     aws.String(receiptHandle),
		VisibilityTimeout: timeout,
	})
	if err != nil {
		return &TransportError{Op: "change message visibility", Err: err}
	}
	return nil
}

// Purge deletes every message in the queue. Intended for test environments.
func (c *Client) Purge(ctx context.Context) error {
	api, err := c.transport()
	if err != nil {
		return err
	}

	_, err = api.PurgeQueue(ctx, &sqs.PurgeQueueInput{
		QueueUrl: aws.String(c.queueURL),
	})
	if err != nil {
		return &TransportError{Op: "purge queue", Err: err}
	}
	return nil
}

// Close releases the client. It is idempotent; the first call transitions
// the client to its terminal closed state and drops the transport handle.
// Pair it with defer so the release runs on every exit path.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.api = nil
	return nil
}
