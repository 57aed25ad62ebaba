// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kanapdf/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func seedRun(t *testing.T, s *Store) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := s.BeginRun(ctx, "combine", "input_combine", "20261018_output")
	require.NoError(t, err)

	require.NoError(t, s.RecordFiles(ctx, id, []types.FileRecord{
		{Path: "in/a/アベ.pdf", Status: types.StatusScheduled, Row: "ア行"},
		{Path: "in/a/Smith.pdf", Status: types.StatusPending, Row: types.NoRow},
	}))
	require.NoError(t, s.RecordFiles(ctx, id, []types.FileRecord{
		{Path: "in/a/アベ.pdf", Status: types.StatusMerged, Row: "ア行"},
	}))
	require.NoError(t, s.RecordOutput(ctx, id, types.OutputFile{
		Path: "20261018_output/input_combine_ア行.pdf", Row: "ア行", Pages: 3, Bytes: 1234,
	}))
	require.NoError(t, s.FinishRun(ctx, id, 0))
	return id
}

func TestRunLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	id := seedRun(t, s)

	d, err := s.RunDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "combine", d.Command)
	assert.Equal(t, "input_combine", d.InputDir)
	assert.Equal(t, time.Date(2026, 10, 18, 9, 1, 0, 0, time.UTC), d.StartedAt)
	assert.Equal(t, time.Date(2026, 10, 18, 9, 2, 0, 0, time.UTC), d.FinishedAt)

	assert.Equal(t, []types.FileRecord{
		{Path: "in/a/アベ.pdf", Status: types.StatusMerged, Row: "ア行"},
		{Path: "in/a/Smith.pdf", Status: types.StatusPending, Row: types.NoRow},
	}, d.Files, "re-recording a path updates it in place")

	require.Len(t, d.Outputs, 1)
	assert.Equal(t, 3, d.Outputs[0].Pages)
	assert.EqualValues(t, 1234, d.Outputs[0].Bytes)
	assert.Empty(t, d.Bank)
}

func TestRunsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, cmd := range []string{"combine", "split", "ocr bank"} {
		_, err := s.BeginRun(ctx, cmd, "", "")
		require.NoError(t, err)
	}

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "ocr bank", runs[0].Command)
	assert.True(t, runs[0].FinishedAt.IsZero())

	runs, err = s.Runs(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRecordBank(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	id, err := s.BeginRun(ctx, "ocr bank", "forms", "")
	require.NoError(t, err)

	recs := []types.BankRecord{
		{File: "a.pdf", Page: 1, BankCode: "0001", BranchCode: "002", AccountNumber: "0000003", Status: "ok"},
		{File: "b.pdf", Status: "error: no pages"},
	}
	require.NoError(t, s.RecordBank(ctx, id, recs))
	require.NoError(t, s.RecordBank(ctx, id, recs[:1]))

	d, err := s.RunDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, recs[:1], d.Bank, "recording again replaces earlier records")
}

func TestUnknownRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.RunDetail(ctx, 42)
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = s.FinishRun(ctx, 42, 0)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReopenKeepsRuns(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.BeginRun(context.Background(), "combine", "in", "out")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestExportJSON(t *testing.T) {
	s := testStore(t)
	seedRun(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(context.Background(), &buf, false))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "combine", got[0]["command"])
	assert.Len(t, got[0]["files"], 2)
}

func TestExportYAMLCompressed(t *testing.T) {
	s := testStore(t)
	seedRun(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(context.Background(), &buf, true))

	zr, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer zr.Close()

	var plain bytes.Buffer
	_, err = plain.ReadFrom(zr)
	require.NoError(t, err)

	var got []Detail
	require.NoError(t, yaml.Unmarshal(plain.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "combine", got[0].Command)
	require.Len(t, got[0].Outputs, 1)
	assert.Equal(t, "ア行", got[0].Outputs[0].Row)
}
