// Package kvutil provides helpers for the NATS JetStream KV buckets the
// watchdog mirrors its status into.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// StatusBucketConfig returns the KV configuration for a status bucket.
//
// Only the latest snapshot per key is kept. Entries expire after ttl so a
// watchdog that dies without cleaning up disappears from `watchdog status`.
//
// Parameters:
//   - bucket: Bucket name
//   - ttl: Entry time-to-live; 0 keeps entries forever
//
// Returns:
//   - jetstream.KeyValueConfig: Configuration for EnsureKVBucketWithRetry
func StatusBucketConfig(bucket string, ttl time.Duration) jetstream.KeyValueConfig {
	return jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "watchdog supervisor status",
		History:     1,
		TTL:         ttl,
		Storage:     jetstream.FileStorage,
	}
}

// EnsureKVBucketWithRetry creates or opens a KV bucket with retry logic.
//
// Several watchdogs may share one bucket and race to create it on startup.
// Creation is retried with exponential backoff; an existing bucket is opened.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: KV bucket configuration
//   - maxRetries: Maximum number of attempts (default: 3)
//
// Returns:
//   - jetstream.KeyValue: The KV bucket instance
//   - error: The last error after all attempts failed
//
// Example:
//
//	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js,
//	    kvutil.StatusBucketConfig("watchdog-status", 30*time.Second), 3)
func EnsureKVBucketWithRetry(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.KeyValueConfig,
	maxRetries int,
) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error

	for attempt := range maxRetries {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err := js.KeyValue(ctx, config.Bucket)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		// 10ms, 20ms, 40ms...
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by maxRetries
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, maxRetries, lastErr)
}

// OpenKVBucket opens an existing KV bucket without creating it.
//
// Used by read-only clients such as `watchdog status`.
func OpenKVBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open KV bucket %s: %w", bucket, err)
	}

	return kv, nil
}
