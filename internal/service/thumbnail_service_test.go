package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-job-service/internal/encoder"
	"media-job-service/internal/entity"
	"media-job-service/internal/service"
	"media-job-service/internal/storage"
)

func testAssets(n int) []entity.Asset {
	out := make([]entity.Asset, n)
	for i := range out {
		out[i] = entity.Asset{
			ID:         uuid.New(),
			URL:        "s3://media/src-" + string(rune('a'+i)) + ".mp4",
			Resolution: entity.Tier1080p,
			Duration:   10,
		}
	}
	return out
}

// failingOn fails the encode of one source url and succeeds for the rest.
func failingOn(source string, err error) encoder.Encoder {
	return encoder.Func(func(ctx context.Context, req encoder.Request) (*encoder.Artifact, error) {
		if req.Source == source {
			return nil, err
		}
		return &encoder.Artifact{Data: []byte("jpeg:" + req.Source), ContentType: "image/jpeg", Ext: ".jpg"}, nil
	})
}

func TestRunBatchContinuesPastFailedItem(t *testing.T) {
	assets := testAssets(3)
	repo := newMemAssets(assets...)
	store := newMemStore()
	enc := failingOn(assets[1].URL, &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: "exit status 1"})

	svc := service.NewThumbnailService(repo, enc, store, service.DefaultThumbnailConfig())
	rep := svc.RunBatch(context.Background(), assets)

	assert.Equal(t, 3, rep.Processed)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 1, rep.Failed)
	assert.False(t, rep.NothingToDo)

	require.Len(t, rep.Results, 3)
	assert.True(t, rep.Results[0].Succeeded)
	assert.False(t, rep.Results[1].Succeeded)
	assert.Equal(t, "encode", rep.Results[1].Stage)
	assert.Contains(t, rep.Results[1].Error, "exit status 1")
	assert.True(t, rep.Results[2].Succeeded)

	assert.Len(t, repo.thumbnails, 2)
	assert.NotContains(t, repo.thumbnails, assets[1].ID)
	assert.Equal(t, "https://cdn.test/"+storage.ThumbnailKey(assets[2].ID, ".jpg"), repo.thumbnails[assets[2].ID])
}

func TestRunBatchEmptyIsNothingToDo(t *testing.T) {
	svc := service.NewThumbnailService(newMemAssets(), failingOn("", nil), newMemStore(), service.DefaultThumbnailConfig())

	rep := svc.RunBatch(context.Background(), nil)
	assert.True(t, rep.NothingToDo)
	assert.Zero(t, rep.Processed)
	assert.Empty(t, rep.Results)
}

func TestRunBatchUploadFailureSkipsUpdate(t *testing.T) {
	assets := testAssets(2)
	repo := newMemAssets(assets...)
	store := newMemStore()
	store.failKey = storage.ThumbnailKey(assets[0].ID, ".jpg")

	svc := service.NewThumbnailService(repo, failingOn("", nil), store, service.DefaultThumbnailConfig())
	rep := svc.RunBatch(context.Background(), assets)

	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, "upload", rep.Results[0].Stage)
	assert.NotContains(t, repo.thumbnails, assets[0].ID)
	assert.Contains(t, repo.thumbnails, assets[1].ID)
}

func TestRunBatchUpdateFailureIsRecorded(t *testing.T) {
	assets := testAssets(1)
	repo := newMemAssets(assets...)
	repo.setErr = errors.New("db gone")

	svc := service.NewThumbnailService(repo, failingOn("", nil), newMemStore(), service.DefaultThumbnailConfig())
	rep := svc.RunBatch(context.Background(), assets)

	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, "update", rep.Results[0].Stage)
}

func TestRunBatchUpdateFailureRemovesUpload(t *testing.T) {
	assets := testAssets(1)
	repo := newMemAssets(assets...)
	repo.setErr = errors.New("db gone")
	store := newMemStore()

	svc := service.NewThumbnailService(repo, failingOn("", nil), store, service.DefaultThumbnailConfig())
	rep := svc.RunBatch(context.Background(), assets)

	require.Equal(t, 1, rep.Failed)
	assert.Empty(t, store.objects)
}

func TestRunBatchUpdateFailureKeepsReferencedThumbnail(t *testing.T) {
	assets := testAssets(1)
	prev := "https://cdn.test/" + storage.ThumbnailKey(assets[0].ID, ".jpg")
	assets[0].ThumbnailURL = &prev
	repo := newMemAssets(assets...)
	repo.setErr = errors.New("db gone")
	store := newMemStore()

	svc := service.NewThumbnailService(repo, failingOn("", nil), store, service.DefaultThumbnailConfig())
	rep := svc.RunBatch(context.Background(), assets)

	require.Equal(t, 1, rep.Failed)
	assert.Contains(t, store.objects, storage.ThumbnailKey(assets[0].ID, ".jpg"))
}

func TestRunBatchTimeoutIsPerItem(t *testing.T) {
	assets := testAssets(3)
	enc := encoder.Func(func(ctx context.Context, req encoder.Request) (*encoder.Artifact, error) {
		if req.Source == assets[0].URL {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &encoder.Artifact{Data: []byte("x"), ContentType: "image/jpeg", Ext: ".jpg"}, nil
	})
	cfg := service.DefaultThumbnailConfig()
	cfg.Timeout = 50 * time.Millisecond

	svc := service.NewThumbnailService(newMemAssets(assets...), enc, newMemStore(), cfg)
	rep := svc.RunBatch(context.Background(), assets)

	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Contains(t, rep.Results[0].Error, "timeout")
}

func TestRunBatchConcurrencyIsBoundedAndOrdered(t *testing.T) {
	assets := testAssets(8)
	var inFlight, peak atomic.Int32
	enc := encoder.Func(func(ctx context.Context, req encoder.Request) (*encoder.Artifact, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return &encoder.Artifact{Data: []byte("x"), ContentType: "image/jpeg", Ext: ".jpg"}, nil
	})

	svc := service.NewThumbnailService(newMemAssets(assets...), enc, newMemStore(), service.DefaultThumbnailConfig(),
		service.WithConcurrency(3))
	rep := svc.RunBatch(context.Background(), assets)

	assert.Equal(t, 8, rep.Succeeded)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	for i, r := range rep.Results {
		assert.Equal(t, assets[i].ID, r.ID)
	}
}

func TestBackfillUsesAssetsWithoutThumbnail(t *testing.T) {
	assets := testAssets(3)
	done := "https://cdn.test/existing.jpg"
	assets[0].ThumbnailURL = &done
	repo := newMemAssets(assets...)

	svc := service.NewThumbnailService(repo, failingOn("", nil), newMemStore(), service.DefaultThumbnailConfig())
	rep, err := svc.Backfill(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Processed)
	assert.Equal(t, assets[1].ID, rep.Results[0].ID)

	rep, err = svc.Backfill(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, rep.NothingToDo)
}

func TestRunBatchByIDsRecordsUnknownIDs(t *testing.T) {
	assets := testAssets(2)
	unknown := uuid.New()
	svc := service.NewThumbnailService(newMemAssets(assets...), failingOn("", nil), newMemStore(), service.DefaultThumbnailConfig())

	rep := svc.RunBatchByIDs(context.Background(), []uuid.UUID{assets[0].ID, unknown, assets[1].ID})

	assert.Equal(t, 3, rep.Processed)
	assert.Equal(t, 1, rep.Failed)
	require.Len(t, rep.Results, 3)
	assert.Equal(t, unknown, rep.Results[1].ID)
	assert.Equal(t, "lookup", rep.Results[1].Stage)
	assert.True(t, rep.Results[2].Succeeded)
}
