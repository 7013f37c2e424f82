package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	sink := NewFileSink(path)
	ctx := context.Background()

	_, ok, err := sink.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sink.Save(ctx, []byte(`{"v":1}`)))
	data, ok, err := sink.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"v":1}`, string(data))

	require.NoError(t, sink.Save(ctx, []byte(`{"v":2}`)))
	data, _, err = sink.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(data))
}

func TestFileSinkCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "snapshot.json")
	sink := NewFileSink(path)

	require.NoError(t, sink.Save(context.Background(), []byte("{}")))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFileSinkLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(filepath.Join(dir, "snapshot.json"))

	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Save(context.Background(), []byte("{}")))
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
