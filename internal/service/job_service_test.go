package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"media-job-service/internal/entity"
	"media-job-service/internal/service"
)

type fakeJobRepo struct {
	createCalled int
	lastAssetID  uuid.UUID
	lastInput    json.RawMessage
	lastPriority int

	createID  uuid.UUID
	createErr error
}

func (r *fakeJobRepo) Create(ctx context.Context, assetID uuid.UUID, priority int, input json.RawMessage) (uuid.UUID, error) {
	r.createCalled++
	r.lastAssetID = assetID
	r.lastPriority = priority
	r.lastInput = input
	if r.createErr != nil {
		return uuid.Nil, r.createErr
	}
	return r.createID, nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.RenditionJob, error) {
	return nil, entity.ErrNotFound
}

type fakeQueue struct {
	enqueuedIDs        []string
	enqueuedPriorities []int
	enqueueErr         error
}

func (q *fakeQueue) Enqueue(ctx context.Context, jobID string, priority int) error {
	q.enqueuedIDs = append(q.enqueuedIDs, jobID)
	q.enqueuedPriorities = append(q.enqueuedPriorities, priority)
	return q.enqueueErr
}

func validDispatch() entity.DispatchRequest {
	return entity.DispatchRequest{
		AssetID:           uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		SourceURL:         "s3://media/source.mp4",
		SourceResolution:  entity.Tier4K,
		TargetResolutions: []entity.Tier{entity.Tier1080p, entity.Tier720p},
		Duration:          42,
	}
}

func TestJobService_CreateJob_StoresRequestAndEnqueues(t *testing.T) {
	ctx := context.Background()
	id := uuid.MustParse("66666666-6666-6666-6666-666666666666")

	repo := &fakeJobRepo{createID: id}
	queue := &fakeQueue{}
	svc := service.NewJobService(repo, queue)

	got, err := svc.CreateJob(ctx, validDispatch(), service.PriorityHigh)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != id {
		t.Fatalf("expected id=%s, got %s", id, got)
	}
	if repo.lastAssetID != validDispatch().AssetID {
		t.Fatalf("expected asset id to be stored, got %s", repo.lastAssetID)
	}

	var stored entity.DispatchRequest
	if err := json.Unmarshal(repo.lastInput, &stored); err != nil {
		t.Fatalf("stored input is not a dispatch request: %v", err)
	}
	if len(stored.TargetResolutions) != 2 || stored.TargetResolutions[0] != entity.Tier1080p {
		t.Fatalf("unexpected stored targets: %#v", stored.TargetResolutions)
	}

	if len(queue.enqueuedIDs) != 1 || queue.enqueuedIDs[0] != id.String() {
		t.Fatalf("expected enqueue id=%s, got %#v", id, queue.enqueuedIDs)
	}
	if queue.enqueuedPriorities[0] != service.PriorityHigh {
		t.Fatalf("expected priority=2, got %d", queue.enqueuedPriorities[0])
	}
}

func TestJobService_CreateJob_PriorityClampedToNormal(t *testing.T) {
	repo := &fakeJobRepo{createID: uuid.New()}
	queue := &fakeQueue{}
	svc := service.NewJobService(repo, queue)

	if _, err := svc.CreateJob(context.Background(), validDispatch(), 999); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if repo.lastPriority != service.PriorityNormal {
		t.Fatalf("expected repo priority=1 (clamped), got %d", repo.lastPriority)
	}
	if len(queue.enqueuedPriorities) != 1 || queue.enqueuedPriorities[0] != service.PriorityNormal {
		t.Fatalf("expected enqueue priority=1 (clamped), got %#v", queue.enqueuedPriorities)
	}
}

func TestJobService_CreateJob_RejectsInvalidRequest(t *testing.T) {
	cases := map[string]func(*entity.DispatchRequest){
		"no asset":      func(r *entity.DispatchRequest) { r.AssetID = uuid.Nil },
		"no source":     func(r *entity.DispatchRequest) { r.SourceURL = "" },
		"bad source":    func(r *entity.DispatchRequest) { r.SourceResolution = "8k" },
		"no targets":    func(r *entity.DispatchRequest) { r.TargetResolutions = nil },
		"bad target":    func(r *entity.DispatchRequest) { r.TargetResolutions = []entity.Tier{"480p"} },
		"negative secs": func(r *entity.DispatchRequest) { r.Duration = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &fakeJobRepo{createID: uuid.New()}
			svc := service.NewJobService(repo, &fakeQueue{})

			req := validDispatch()
			mutate(&req)
			_, err := svc.CreateJob(context.Background(), req, service.PriorityNormal)
			if !errors.Is(err, entity.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if repo.createCalled != 0 {
				t.Fatalf("repo must not be called for an invalid request")
			}
		})
	}
}

func TestJobService_CreateJob_EnqueueFailure(t *testing.T) {
	repo := &fakeJobRepo{createID: uuid.New()}
	queue := &fakeQueue{enqueueErr: errors.New("redis down")}
	svc := service.NewJobService(repo, queue)

	if _, err := svc.CreateJob(context.Background(), validDispatch(), service.PriorityNormal); err == nil {
		t.Fatalf("expected enqueue error to propagate")
	}
}
