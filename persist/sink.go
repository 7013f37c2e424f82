// Package persist provides the byte sinks the in-memory stores snapshot
// into. The stores own the JSON encoding; a sink only moves bytes.
package persist

import "context"

// Sink is a durable destination for whole-store snapshots.
type Sink interface {
	// Save replaces the previous snapshot with data.
	Save(ctx context.Context, data []byte) error
	// Load returns the last saved snapshot. ok is false when no
	// snapshot has ever been written, which is not an error.
	Load(ctx context.Context) (data []byte, ok bool, err error)
}
