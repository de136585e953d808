package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-job-service/internal/entity"
	"media-job-service/internal/service"
)

func TestPrintReport_ListsEveryItem(t *testing.T) {
	ok, bad := uuid.New(), uuid.New()
	rep := service.BatchReport{
		Processed: 2,
		Succeeded: 1,
		Failed:    1,
		Results: []service.ItemResult{
			{ID: ok, Succeeded: true, URL: "https://cdn.example.com/thumbnails/a.jpg"},
			{ID: bad, Stage: "encode", Error: "ffmpeg exited 1"},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, rep)
	out := buf.String()

	assert.Contains(t, out, ok.String())
	assert.Contains(t, out, bad.String())
	assert.Contains(t, out, "ffmpeg exited 1")
	assert.Contains(t, out, "processed=2 succeeded=1 failed=1")
}

func TestPrintReport_NothingToDo(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, service.BatchReport{NothingToDo: true})
	assert.Equal(t, "Nothing to do.\n", buf.String())
}

func TestPrintAck(t *testing.T) {
	id := uuid.New()

	var buf bytes.Buffer
	printAck(&buf, service.DispatchAck{AssetID: id, NothingToDo: true})
	assert.Contains(t, buf.String(), "nothing dispatched")

	buf.Reset()
	printAck(&buf, service.DispatchAck{
		AssetID:   id,
		JobID:     "job-7",
		RequestID: "req-1",
		Targets:   []entity.Tier{entity.Tier1080p, entity.Tier720p},
	})
	assert.Contains(t, buf.String(), "job-7")
	assert.Contains(t, buf.String(), "1080p")
}

func TestPrintAgentJobs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	jobs := []entity.AgentJob{
		{ID: uuid.New(), UserID: "u1", Status: entity.AgentJobQueued, CreatedAt: now},
		{ID: uuid.New(), UserID: "u1", Status: entity.AgentJobFailed, CreatedAt: now},
	}

	var buf bytes.Buffer
	printAgentJobs(&buf, jobs)
	assert.Contains(t, buf.String(), jobs[0].ID.String())
	assert.Contains(t, buf.String(), "total: 2")

	buf.Reset()
	printAgentJob(&buf, &jobs[1])
	assert.Contains(t, buf.String(), "failed")
	assert.Contains(t, buf.String(), "2026-03-01T12:00:00Z")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, service.BatchReport{Processed: 3, Failed: 1}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.EqualValues(t, 3, got["processed"])
	assert.EqualValues(t, 1, got["failed"])
}

func TestDescribe(t *testing.T) {
	id := uuid.New()
	ownerID = "u1"
	t.Cleanup(func() { ownerID = "" })

	assert.Contains(t, describe(entity.ErrNotFound, id).Error(), "not found")
	assert.Contains(t, describe(entity.ErrInvalidState, id).Error(), "cannot be cancelled")

	other := errors.New("boom")
	assert.Same(t, other, describe(other, id))
}

func TestExportToEnv_DoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://from-env")
	t.Setenv("STORAGE_DRIVER", "")
	os.Unsetenv("STORAGE_DRIVER")

	v := viper.New()
	v.Set("postgres_dsn", "postgres://from-file")
	v.Set("storage_driver", "s3")
	exportToEnv(v)

	assert.Equal(t, "postgres://from-env", os.Getenv("POSTGRES_DSN"))
	assert.Equal(t, "s3", os.Getenv("STORAGE_DRIVER"))
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"thumbnails", "backfill"},
		{"renditions", "reconcile"},
		{"agent-jobs", "get"},
		{"agent-jobs", "cancel"},
		{"agent-jobs", "list"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestReconcile_RejectsBadAssetID(t *testing.T) {
	err := runRenditionsReconcile(renditionsReconcileCmd, []string{"not-a-uuid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid asset id")
}
