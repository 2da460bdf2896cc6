package statsstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSQLiteSaveAndListRecent(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(Config{Driver: DriverSQLite, SQLitePath: filepath.Join(dir, "stats.db")})
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()

	require.NoError(t, store.Save(ctx, RunRecord{
		StartedAt:    now,
		FinishedAt:   now.Add(time.Second),
		InputPath:    "run1.raw",
		RDHSeen:      10,
		RDHFiltered:  1,
		PayloadBytes: 4096,
		ErrorCount:   2,
		SnapshotJSON: []byte(`{"rdh_stats":{}}`),
	}))
	require.NoError(t, store.Save(ctx, RunRecord{
		StartedAt:    now.Add(time.Minute),
		FinishedAt:   now.Add(time.Minute + time.Second),
		InputPath:    "run2.raw",
		RDHSeen:      20,
		HasFatal:     true,
		SnapshotJSON: []byte(`{"rdh_stats":{}}`),
	}))

	recs, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "run2.raw", recs[0].InputPath)
	require.True(t, recs[0].HasFatal)
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(Config{SQLitePath: filepath.Join(dir, "default.db")})
	require.NoError(t, err)
	defer store.Close()
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "mysql"})
	require.Error(t, err)
}
