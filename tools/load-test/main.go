package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"simplesqs.client/pkg/sqsclient"
)

func main() {
	// Configuration
	// Defaults match the LocalStack compose setup; override via environment.
	region := envOr("AWS_REGION", "us-east-1")
	accessKeyID := envOr("AWS_ACCESS_KEY_ID", "test")
	secretAccessKey := envOr("AWS_SECRET_ACCESS_KEY", "test")
	queueURL := envOr("SQS_QUEUE_URL", "http://localhost:4566/000000000000/messages-queue")
	endpoint := envOr("AWS_ENDPOINT", "http://localhost:4566")

	totalMessages := 10000
	concurrency := 50 // Number of concurrent senders to avoid local port exhaustion

	builder := sqsclient.NewBuilder().
		WithRegion(region).
		WithCredentials(accessKeyID, secretAccessKey).
		WithQueueURL(queueURL)
	if endpoint != "" {
		builder = builder.WithEndpoint(endpoint)
	}

	client, err := builder.Build(context.Background())
	if err != nil {
		fmt.Printf("Could not build queue client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Printf("Starting load test: %d messages to %s with concurrency %d\n", totalMessages, queueURL, concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	startTime := time.Now()

	for i := 0; i < totalMessages; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		go func() {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			payload := fmt.Sprintf(`{"id": "%s", "message": "load-test"}`, uuid.NewString())

			if _, err := client.SendMessage(context.Background(), payload); err != nil {
				atomic.AddInt64(&failCount, 1)
				return
			}
			atomic.AddInt64(&successCount, 1)
		}()
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Messages: %d\n", totalMessages)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Messages/Sec:   %.2f\n", float64(totalMessages)/duration.Seconds())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
