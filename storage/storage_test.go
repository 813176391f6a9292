package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
)

func block(height types.Height, payload, source string) *types.Block {
	data := []byte(payload)
	return &types.Block{
		Height: height,
		Hash:   types.CalcHash(data),
		Data:   data,
		Source: source,
	}
}

func TestSaveAndGet(t *testing.T) {
	store := InMemory()
	defer store.Close()

	_, err := store.GetBlock(7)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveBlock(block(7, "payload-7", "http://a")))
	got, err := store.GetBlock(7)
	require.NoError(t, err)
	require.Equal(t, types.Height(7), got.Height)
	require.Equal(t, []byte("payload-7"), got.Data)
	require.Equal(t, "http://a", got.Source)
}

func TestCopies(t *testing.T) {
	store := InMemory()
	defer store.Close()

	require.NoError(t, store.SaveBlock(block(3, "payload", "http://a")))
	require.NoError(t, store.SaveBlock(block(3, "payload", "http://a")))
	// the same source overwrites its copy, it is not an extra one
	count, err := store.CountCopies(3)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, store.SaveBlock(block(3, "payload", "http://b")))
	count, err = store.CountCopies(3)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	copies, err := store.Copies(3)
	require.NoError(t, err)
	require.Len(t, copies, 2)
	require.Equal(t, copies[0].Hash, copies[1].Hash)

	require.NoError(t, store.DeleteBlock(3, "http://b"))
	count, err = store.CountCopies(3)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestCopyCounts(t *testing.T) {
	store := InMemory()
	defer store.Close()

	for _, height := range []types.Height{1, 2, 4, 7} {
		require.NoError(t, store.SaveBlock(block(height, fmt.Sprintf("payload-%d", height), "http://a")))
	}
	require.NoError(t, store.SaveBlock(block(4, "other", "http://b")))

	counts, err := store.CopyCounts(1, 7)
	require.NoError(t, err)
	require.Equal(t, map[types.Height]int{1: 1, 2: 1, 4: 2, 7: 1}, counts)

	counts, err = store.CopyCounts(3, 5)
	require.NoError(t, err)
	require.Equal(t, map[types.Height]int{4: 2}, counts)
}

func TestBlockCountAndHighest(t *testing.T) {
	store := InMemory()
	defer store.Close()

	count, err := store.BlockCount()
	require.NoError(t, err)
	require.Zero(t, count)
	_, ok, err := store.HighestHeight()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.SaveBlock(block(10, "a", "http://a")))
	require.NoError(t, store.SaveBlock(block(10, "b", "http://b")))
	require.NoError(t, store.SaveBlock(block(12, "c", "http://a")))

	count, err = store.BlockCount()
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)

	highest, ok, err := store.HighestHeight()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Height(12), highest)
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveBlock(block(5, "persisted", "http://a")))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.GetBlock(5)
	require.NoError(t, err)
	require.Equal(t, []byte("persisted"), got.Data)
}
