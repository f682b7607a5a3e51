package worker

import (
	"context"

	"github.com/rs/zerolog/log"

	"simplesqs.client/pkg/logger"
	"simplesqs.client/pkg/sqsclient"
	"simplesqs.client/pkg/telemetry"
)

// QueueClient is the slice of the queue client the worker needs.
type QueueClient interface {
	ReceiveMessages(ctx context.Context, opts sqsclient.ReceiveOptions) ([]sqsclient.Message, error)
	DeleteMessage(ctx context.Context, receiptHandle string) error
	ChangeMessageVisibility(ctx context.Context, receiptHandle string, timeout int32) error
}

// Processor is a generic interface for any type that can process a message
// from the queue. This lets us reuse the main worker logic for different
// kinds of jobs.
type Processor interface {
	Process(ctx context.Context, msg sqsclient.Message) (shouldRetry bool, retryDelay int32, err error)
}

// Worker is our generic queue consumer. It polls the queue and passes
// messages off to a Processor.
type Worker struct {
	client    QueueClient
	processor Processor
	// Concurrency controls how many messages can be processed at the same time.
	Concurrency int
}

// NewWorker creates a new queue worker, ready to be started.
func NewWorker(client QueueClient, proc Processor) *Worker {
	return &Worker{
		client:      client,
		processor:   proc,
		Concurrency: 10, // Default to 10 concurrent processors
	}
}

// Start kicks off the worker's main loop for polling the queue.
// It will run until the provided context is canceled.
func (w *Worker) Start(ctx context.Context) {
	log.Info().Int("concurrency", w.Concurrency).Msg("Queue worker started. Polling for messages...")

	messagesCh := make(chan sqsclient.Message, w.Concurrency)

	// Start a pool of processor goroutines
	for i := 0; i < w.Concurrency; i++ {
		go w.processMessages(ctx, messagesCh)
	}

	// Start the poller in the main goroutine
	w.pollMessages(ctx, messagesCh)
}

// pollMessages fetches messages from the queue and feeds them to the processors.
func (w *Worker) pollMessages(ctx context.Context, messagesCh chan<- sqsclient.Message) {
	defer close(messagesCh) // Close channel to signal processors to stop

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Poller shutting down...")
			return
		default:
			msgs, err := w.client.ReceiveMessages(ctx, sqsclient.ReceiveOptions{
				MaxMessages: int32(w.Concurrency), // Fetch as many messages as we have processors
				WaitTime:    20,
			})
			if err != nil {
				log.Error().Err(err).Msg("Error receiving messages")
				continue
			}
			log.Info().Int("count", len(msgs)).Msg("Received messages")
			for _, msg := range msgs {
				messagesCh <- msg
			}
		}
	}
}

// processMessages runs in a goroutine, listening for messages on a channel and processing them.
func (w *Worker) processMessages(ctx context.Context, messagesCh <-chan sqsclient.Message) {
	for msg := range messagesCh {
		w.handleSingleMessage(ctx, msg)
	}
}

// handleSingleMessage calls the processor for one message and then decides
// whether to delete it or push its visibility timeout out for a retry.
func (w *Worker) handleSingleMessage(ctx context.Context, msg sqsclient.Message) {
	ctx, span := telemetry.StartSpanFromMessage(ctx, msg.ID, msg.Attributes)
	defer span.End()

	ctx = logger.EnrichContextWithLogger(ctx)

	shouldRetry, retryDelay, err := w.processor.Process(ctx, msg)

	if err != nil && shouldRetry {
		log.Ctx(ctx).Warn().Err(err).Int32("retry_delay", retryDelay).Msg("Processing failed, will retry")

		_ = w.client.ChangeMessageVisibility(ctx, msg.ReceiptHandle, retryDelay)
		return
	}

	if err == nil {
		// Only delete on total success
		if err := w.client.DeleteMessage(ctx, msg.ReceiptHandle); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("message_id", msg.ID).Msg("Failed to delete processed message")
		}
	} else {
		// An unrecoverable error occurred (e.g., bad message format).
		log.Ctx(ctx).Error().Err(err).Msg("Unrecoverable error processing message, will not retry")
	}
}
