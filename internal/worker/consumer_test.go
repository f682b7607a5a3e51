package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplesqs.client/pkg/sqsclient"
)

// fakeQueue hands out the configured batches once, then blocks until the
// context is canceled, the way a long poll on an empty queue would.
type fakeQueue struct {
	mu           sync.Mutex
	batches      [][]sqsclient.Message
	deleted      []string
	visibilities map[string]int32
}

func newFakeQueue(batches ...[]sqsclient.Message) *fakeQueue {
	return &fakeQueue{batches: batches, visibilities: make(map[string]int32)}
}

func (f *fakeQueue) ReceiveMessages(ctx context.Context, opts sqsclient.ReceiveOptions) ([]sqsclient.Message, error) {
	f.mu.Lock()
	if len(f.batches) > 0 {
		batch := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return batch, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeQueue) DeleteMessage(ctx context.Context, receiptHandle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, receiptHandle)
	return nil
}

func (f *fakeQueue) ChangeMessageVisibility(ctx context.Context, receiptHandle string, timeout int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visibilities[receiptHandle] = timeout
	return nil
}

func (f *fakeQueue) deletedHandles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeQueue) visibilityFor(receiptHandle string) (int32, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.visibilities[receiptHandle]
	return v, ok
}

// fakeProcessor returns a fixed result and records what it saw.
type fakeProcessor struct {
	mu          sync.Mutex
	processed   []sqsclient.Message
	shouldRetry bool
	retryDelay  int32
	err         error
}

func (p *fakeProcessor) Process(ctx context.Context, msg sqsclient.Message) (bool, int32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, msg)
	return p.shouldRetry, p.retryDelay, p.err
}

func (p *fakeProcessor) processedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.processed)
}

func TestWorkerDeletesMessagesOnSuccess(t *testing.T) {
	queue := newFakeQueue([]sqsclient.Message{
		{ID: "m-1", Body: "one", ReceiptHandle: "rh-1"},
		{ID: "m-2", Body: "two", ReceiptHandle: "rh-2"},
	})
	proc := &fakeProcessor{}

	w := NewWorker(queue, proc)
	w.Concurrency = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.Eventually(t, func() bool {
		return len(queue.deletedHandles()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, proc.processedCount())
	assert.ElementsMatch(t, []string{"rh-1", "rh-2"}, queue.deletedHandles())
}

func TestWorkerReschedulesMessageOnRetryableFailure(t *testing.T) {
	queue := newFakeQueue([]sqsclient.Message{
		{ID: "m-1", Body: "one", ReceiptHandle: "rh-1"},
	})
	proc := &fakeProcessor{shouldRetry: true, retryDelay: 30, err: errors.New("downstream down")}

	w := NewWorker(queue, proc)
	w.Concurrency = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.Eventually(t, func() bool {
		_, ok := queue.visibilityFor("rh-1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	delay, _ := queue.visibilityFor("rh-1")
	assert.Equal(t, int32(30), delay)
	assert.Empty(t, queue.deletedHandles())
}

func TestWorkerDropsMessageOnUnrecoverableFailure(t *testing.T) {
	queue := newFakeQueue([]sqsclient.Message{
		{ID: "m-1", Body: "not json", ReceiptHandle: "rh-1"},
	})
	proc := &fakeProcessor{shouldRetry: false, err: errors.New("malformed message")}

	w := NewWorker(queue, proc)
	w.Concurrency = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.Eventually(t, func() bool {
		return proc.processedCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond) // let the handler finish its bookkeeping

	// Not deleted and not rescheduled; visibility timeout will bring it back.
	assert.Empty(t, queue.deletedHandles())
	_, ok := queue.visibilityFor("rh-1")
	assert.False(t, ok)
}
