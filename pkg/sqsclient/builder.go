package sqsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Builder accumulates connection parameters for a Client. The With methods
// may be called in any order; nothing is validated until Build. A Builder is
// a plain accumulator and is discarded after Build.
type Builder struct {
	region   string
	creds    Credentials
	queueURL string
	endpoint string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithRegion sets the AWS region name.
func (b *Builder) WithRegion(region string) *Builder {
	b.region = region
	return b
}

// WithQueueURL sets the target queue URL.
func (b *Builder) WithQueueURL(url string) *Builder {
	b.queueURL = url
	return b
}

// WithCredentials sets the access key pair. Both halves are stored together;
// calling it a second time replaces the whole pair.
func (b *Builder) WithCredentials(accessKeyID, secretAccessKey string) *Builder {
	b.creds = Credentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: Secret(secretAccessKey),
	}
	return b
}

// WithEndpoint overrides the service endpoint, typically to point the client
// at LocalStack during local development. Optional.
func (b *Builder) WithEndpoint(url string) *Builder {
	b.endpoint = url
	return b
}

// Build validates the accumulated parameters and returns a connected Client.
// When any required field is missing it returns a *ConfigurationError naming
// all of them. SDK config resolution and client construction happen here and
// nowhere else; Build returns either a fully usable client or an error.
func (b *Builder) Build(ctx context.Context) (*Client, error) {
	var missing []string
	if b.region == "" {
		missing = append(missing, "region")
	}
	if b.creds.AccessKeyID == "" {
		missing = append(missing, "access_key_id")
	}
	if b.creds.SecretAccessKey == "" {
		missing = append(missing, "secret_access_key")
	}
	if b.queueURL == "" {
		missing = append(missing, "queue_url")
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(b.region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(b.creds.AccessKeyID, b.creds.SecretAccessKey.Expose(), ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("sqsclient: loading AWS config: %w", err)
	}

	var sqsOpts []func(*sqs.Options)
	if b.endpoint != "" {
		endpoint := b.endpoint
		sqsOpts = append(sqsOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return NewFromAPI(sqs.NewFromConfig(cfg, sqsOpts...), b.queueURL), nil
}

// New builds a connected Client in a single call for callers that have all
// four parameters up front. It is equivalent to the builder path.
func New(ctx context.Context, region, accessKeyID, secretAccessKey, queueURL string) (*Client, error) {
	return NewBuilder().
		WithRegion(region).
		WithCredentials(accessKeyID, secretAccessKey).
		WithQueueURL(queueURL).
		Build(ctx)
}
