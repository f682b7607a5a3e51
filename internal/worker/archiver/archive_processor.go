package archiver

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"simplesqs.client/internal/archive"
	"simplesqs.client/pkg/sqsclient"
)

// ArchiveProcessor persists drained messages to the archive database. It
// uses a circuit breaker so a struggling database is not hammered while the
// queue keeps redelivering.
type ArchiveProcessor struct {
	store archive.Store
	cb    *gobreaker.CircuitBreaker
}

// NewProcessor creates a new processor for the drain queue. It sets up a
// circuit breaker in front of the archive store.
func NewProcessor(store archive.Store) *ArchiveProcessor {
	settings := gobreaker.Settings{
		Name:        "Message-Archive",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger then 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &ArchiveProcessor{
		store: store,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Process stores a single message. Storage failures are retryable; the
// message stays on the queue and comes back after the returned delay.
func (p *ArchiveProcessor) Process(ctx context.Context, msg sqsclient.Message) (bool, int32, error) {
	if msg.ID == "" {
		// Nothing to key the archive row on; retrying will not help.
		return false, 0, errors.New("message has no id")
	}

	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.store.SaveMessage(ctx, archive.ArchivedMessage{
			MessageID:  msg.ID,
			Body:       msg.Body,
			ReceivedAt: time.Now().UTC(),
		})
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit Breaker is OPEN; skipping archive write")
		}
		return true, calculateBackoff(msg.ReceiveCount), err
	}

	log.Ctx(ctx).Debug().Str("message_id", msg.ID).Msg("Message archived")
	return false, 0, nil
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 {
		return 3600 // max at 1 hour
	}
	return backoff
}
