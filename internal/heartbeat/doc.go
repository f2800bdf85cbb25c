// Package heartbeat mirrors the supervisor's status into a NATS KV bucket.
//
// The KV entry doubles as the watchdog's own heartbeat: the Publisher rewrites
// it after every poll and on a refresh interval, and the bucket TTL removes it
// when the watchdog process itself disappears. Operators read it back with the
// Reader, which is what `watchdog status` does.
//
// # Publisher Lifecycle
//
//  1. Create publisher with New(kv, prefix, refreshInterval)
//  2. Set the application name with SetName(name)
//  3. Start publishing with Start(ctx); the first status is written immediately
//  4. Pass the publisher to the supervisor as its StatusReporter
//  5. Stop with Stop(), which deletes the entry
//
// Example:
//
//	publisher := heartbeat.New(kv, "status", 2*time.Second)
//	publisher.SetName("billing")
//
//	if err := publisher.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer publisher.Stop()
//
// # Key Format
//
// Status entries are stored under:
//
//	{prefix}.{name}
//
// Example: "status.billing"
//
// # Value Format
//
// Values are JSON-encoded types.Status documents. The supervisor state is
// carried by its name in the "state" field.
package heartbeat
