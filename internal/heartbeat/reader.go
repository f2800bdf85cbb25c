package heartbeat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/sakky016/ApplicationWatchdog/types"
)

// Reader loads mirrored status snapshots from NATS KV.
type Reader struct {
	kv     jetstream.KeyValue
	prefix string
}

// NewReader creates a reader for keys under prefix.
func NewReader(kv jetstream.KeyValue, prefix string) *Reader {
	return &Reader{kv: kv, prefix: prefix}
}

// Get returns the status of one application.
//
// Parameters:
//   - ctx: Context for the KV read
//   - name: Application name
//
// Returns:
//   - types.Status: Decoded snapshot with State restored from its name
//   - error: types.ErrStatusNotFound if no entry exists, or a KV/decode error
func (r *Reader) Get(ctx context.Context, name string) (types.Status, error) {
	entry, err := r.kv.Get(ctx, KeyFor(r.prefix, name))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return types.Status{}, fmt.Errorf("%w: %s", types.ErrStatusNotFound, name)
		}

		return types.Status{}, fmt.Errorf("failed to read status for %s: %w", name, err)
	}

	return decodeStatus(entry.Value())
}

// List returns the status of every application under the reader's prefix,
// sorted by name.
func (r *Reader) List(ctx context.Context) ([]types.Status, error) {
	keys, err := r.kv.Keys(ctx)
	if err != nil {
		if types.IsNoKeysFoundError(err) {
			return []types.Status{}, nil
		}

		return nil, fmt.Errorf("failed to list status keys: %w", err)
	}

	keyPrefix := r.prefix + "."

	statuses := make([]types.Status, 0, len(keys))
	for _, key := range keys {
		name, ok := strings.CutPrefix(key, keyPrefix)
		if !ok {
			continue
		}

		st, err := r.Get(ctx, name)
		if errors.Is(err, types.ErrStatusNotFound) {
			// Deleted or expired between list and get.
			continue
		}
		if err != nil {
			return nil, err
		}

		statuses = append(statuses, st)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})

	return statuses, nil
}

func decodeStatus(data []byte) (types.Status, error) {
	var st types.Status
	if err := json.Unmarshal(data, &st); err != nil {
		return types.Status{}, fmt.Errorf("failed to decode status: %w", err)
	}

	if state, ok := types.ParseSupervisorState(st.StateName); ok {
		st.State = state
	}

	return st, nil
}
