package httptransport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"media-job-service/internal/entity"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{entity.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", entity.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: only queued jobs can be cancelled", entity.ErrInvalidState), http.StatusConflict},
		{&entity.DispatchError{Kind: entity.DispatchWorkerUnavailable}, http.StatusBadGateway},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWriteServiceErr_BadGatewayHidesWorkerBody(t *testing.T) {
	var logs bytes.Buffer
	l := zerolog.New(&logs)
	r := httptest.NewRequest(http.MethodPost, "/admin/assets/x/renditions/reconcile", nil)
	r = r.WithContext(l.WithContext(r.Context()))
	rr := httptest.NewRecorder()

	err := &entity.DispatchError{
		Kind:       entity.DispatchWorkerUnavailable,
		StatusCode: 500,
		Diagnostic: "<html>stack trace at /srv/worker/internal</html>",
	}
	writeServiceErr(rr, r, err)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	var body apiError
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "worker unavailable" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if !strings.Contains(logs.String(), "stack trace at /srv/worker/internal") {
		t.Fatalf("diagnostic not logged: %s", logs.String())
	}
}

func TestWriteServiceErr_ClientErrorsKeepMessage(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/agent-jobs/x", nil)
	rr := httptest.NewRecorder()

	writeServiceErr(rr, r, fmt.Errorf("%w: job is processing", entity.ErrInvalidState))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "job is processing") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}
