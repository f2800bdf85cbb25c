package heartbeat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	wdtest "github.com/sakky016/ApplicationWatchdog/testing"
	"github.com/sakky016/ApplicationWatchdog/types"
)

func TestPublisher_SetName(t *testing.T) {
	_, nc := wdtest.StartEmbeddedNATS(t)
	kv := wdtest.CreateJetStreamKV(t, nc, "test-status-set-name")

	publisher := New(kv, "status", 2*time.Second)
	publisher.SetName("billing")

	require.Equal(t, "billing", publisher.Name())
}

func TestPublisher_Start(t *testing.T) {
	t.Run("starts successfully and publishes initial status", func(t *testing.T) {
		ctx := t.Context()

		_, nc := wdtest.StartEmbeddedNATS(t)
		kv := wdtest.CreateJetStreamKV(t, nc, "test-status-start-1")

		publisher := New(kv, "status", 100*time.Millisecond)
		publisher.SetName("billing")

		require.NoError(t, publisher.Start(ctx))
		require.True(t, publisher.IsStarted())

		entry, err := kv.Get(ctx, "status.billing")
		require.NoError(t, err)

		var st types.Status
		require.NoError(t, json.Unmarshal(entry.Value(), &st))
		require.Equal(t, "billing", st.Name)
		require.Equal(t, "Healthy", st.StateName)

		require.NoError(t, publisher.Stop())
	})

	t.Run("returns error if name not set", func(t *testing.T) {
		_, nc := wdtest.StartEmbeddedNATS(t)
		kv := wdtest.CreateJetStreamKV(t, nc, "test-status-start-2")

		publisher := New(kv, "status", 2*time.Second)

		require.ErrorIs(t, publisher.Start(t.Context()), ErrNoName)
		require.False(t, publisher.IsStarted())
	})

	t.Run("returns error if already started", func(t *testing.T) {
		ctx := t.Context()

		_, nc := wdtest.StartEmbeddedNATS(t)
		kv := wdtest.CreateJetStreamKV(t, nc, "test-status-start-3")

		publisher := New(kv, "status", 2*time.Second)
		publisher.SetName("billing")

		require.NoError(t, publisher.Start(ctx))
		require.ErrorIs(t, publisher.Start(ctx), types.ErrPublisherAlreadyStarted)

		require.NoError(t, publisher.Stop())
	})
}

func TestPublisher_Report(t *testing.T) {
	t.Run("writes the snapshot under the publisher name", func(t *testing.T) {
		ctx := t.Context()

		_, nc := wdtest.StartEmbeddedNATS(t)
		kv := wdtest.CreateJetStreamKV(t, nc, "test-status-report-1")

		publisher := New(kv, "status", 0)
		publisher.SetName("billing")
		require.NoError(t, publisher.Start(ctx))
		defer func() { _ = publisher.Stop() }()

		err := publisher.Report(ctx, types.Status{
			Name:              "ignored",
			State:             types.StateDegraded,
			StateName:         types.StateDegraded.String(),
			ConsecutiveMisses: 3,
			MaxWarnings:       5,
			Generation:        2,
			WorkerID:          "w-2",
			Restarts:          1,
			ObservedAt:        time.Now(),
		})
		require.NoError(t, err)

		st, err := NewReader(kv, "status").Get(ctx, "billing")
		require.NoError(t, err)
		require.Equal(t, "billing", st.Name)
		require.Equal(t, types.StateDegraded, st.State)
		require.Equal(t, 3, st.ConsecutiveMisses)
		require.Equal(t, uint64(2), st.Generation)
		require.Equal(t, "w-2", st.WorkerID)
	})

	t.Run("returns error if not started", func(t *testing.T) {
		_, nc := wdtest.StartEmbeddedNATS(t)
		kv := wdtest.CreateJetStreamKV(t, nc, "test-status-report-2")

		publisher := New(kv, "status", 0)
		publisher.SetName("billing")

		err := publisher.Report(t.Context(), types.Status{})
		require.ErrorIs(t, err, types.ErrPublisherNotStarted)
	})
}

func TestPublisher_Stop(t *testing.T) {
	t.Run("stops and deletes the entry", func(t *testing.T) {
		ctx := t.Context()

		_, nc := wdtest.StartEmbeddedNATS(t)
		kv := wdtest.CreateJetStreamKV(t, nc, "test-status-stop-1")

		publisher := New(kv, "status", 50*time.Millisecond)
		publisher.SetName("billing")
		require.NoError(t, publisher.Start(ctx))

		require.NoError(t, publisher.Stop())
		require.False(t, publisher.IsStarted())

		_, err := NewReader(kv, "status").Get(ctx, "billing")
		require.ErrorIs(t, err, types.ErrStatusNotFound)
	})

	t.Run("returns error if not started", func(t *testing.T) {
		_, nc := wdtest.StartEmbeddedNATS(t)
		kv := wdtest.CreateJetStreamKV(t, nc, "test-status-stop-2")

		publisher := New(kv, "status", 2*time.Second)

		require.ErrorIs(t, publisher.Stop(), types.ErrPublisherNotStarted)
	})
}

func TestPublisher_Refresh(t *testing.T) {
	ctx := t.Context()

	_, nc := wdtest.StartEmbeddedNATS(t)
	kv := wdtest.CreateJetStreamKV(t, nc, "test-status-refresh")

	publisher := New(kv, "status", 50*time.Millisecond)
	publisher.SetName("billing")
	publisher.SetLogger(wdtest.NewTestLogger(t))
	require.NoError(t, publisher.Start(ctx))
	defer func() { _ = publisher.Stop() }()

	first, err := kv.Get(ctx, "status.billing")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		entry, err := kv.Get(ctx, "status.billing")
		return err == nil && entry.Revision() > first.Revision()
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPublisher_TTLExpiry(t *testing.T) {
	ctx := t.Context()

	_, nc := wdtest.StartEmbeddedNATS(t)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  "test-status-ttl",
		TTL:     1 * time.Second,
		Storage: jetstream.MemoryStorage,
	})
	require.NoError(t, err)

	// No refresh: the entry must age out once reporting stops.
	publisher := New(kv, "status", 0)
	publisher.SetName("billing")
	require.NoError(t, publisher.Start(ctx))

	reader := NewReader(kv, "status")
	_, err = reader.Get(ctx, "billing")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := reader.Get(ctx, "billing")
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)

	_, err = reader.Get(ctx, "billing")
	require.ErrorIs(t, err, types.ErrStatusNotFound)
}

func TestKeyFor(t *testing.T) {
	require.Equal(t, "status.billing", KeyFor("status", "billing"))
}
