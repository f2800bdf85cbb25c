// Package testing provides test helpers for the watchdog module.
//
// It follows the convention of net/http/httptest: helpers that other
// packages' tests import to build realistic environments cheaply.
//
// Key utilities:
//   - StartEmbeddedNATS: In-process NATS server with JetStream, used by the
//     status mirror tests
//   - CreateJetStreamKV: Memory-backed KV bucket for a single test
//   - NewTestLogger: types.Logger that writes through t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    wdtest "github.com/sakky016/ApplicationWatchdog/testing"
//	)
//
//	func TestStatusMirror(t *testing.T) {
//	    _, nc := wdtest.StartEmbeddedNATS(t)
//	    kv := wdtest.CreateJetStreamKV(t, nc, "watchdog-status")
//	    // Use kv for your tests
//	}
package testing
