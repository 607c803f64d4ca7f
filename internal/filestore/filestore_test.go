package filestore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedName(t *testing.T) {
	assert.Equal(t, "processed/snapshot-2025-06-30.csv",
		ProcessedName("inbox/snapshot.csv", "2025-06-30"))
	assert.Equal(t, "processed/export-unknown.csv",
		ProcessedName("inbox/export.csv", "unknown"))
}

func TestErrorName(t *testing.T) {
	assert.Equal(t, "error/snapshot.csv", ErrorName("inbox/snapshot.csv"))
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(t.TempDir())

	require.NoError(t, s.Write(ctx, "inbox/a.csv", []byte("data")))

	got, err := s.Read(ctx, "inbox/a.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	require.NoError(t, s.Move(ctx, "inbox/a.csv", "processed/a-2025-06-30.csv"))

	_, err = s.Read(ctx, "inbox/a.csv")
	assert.True(t, os.IsNotExist(err))
	got, err = s.Read(ctx, "processed/a-2025-06-30.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestLocalList(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(t.TempDir())

	require.NoError(t, s.Write(ctx, "inbox/a.csv", []byte("a")))
	require.NoError(t, s.Write(ctx, "inbox/b.csv", []byte("b")))
	require.NoError(t, s.Write(ctx, "processed/c.csv", []byte("c")))

	names, err := s.List(ctx, InboxPrefix)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"inbox/a.csv", "inbox/b.csv"}, names)
}

func TestLocalListMissingPrefixIsEmpty(t *testing.T) {
	s := NewLocal(t.TempDir())

	names, err := s.List(context.Background(), InboxPrefix)
	require.NoError(t, err)
	assert.Empty(t, names)
}
