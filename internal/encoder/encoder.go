// Package encoder runs single bounded-time encode operations.
//
// Every encode is a Task: it starts immediately, races its own deadline and
// can be cancelled without touching sibling tasks. Callers do not know
// whether the work is a local ffmpeg process or something remote.
package encoder

import (
	"context"
	"errors"
	"time"

	"media-job-service/internal/entity"
)

type Kind string

const (
	KindThumbnail Kind = "thumbnail"
	KindRendition Kind = "rendition"
)

// Target describes what to produce from the source.
type Target struct {
	Kind Kind
	// Thumbnail: frame offset into the source.
	Offset time.Duration
	Width  int
	// Rendition only; zero keeps the aspect ratio from Width.
	Height int
}

func ThumbnailTarget(offset time.Duration, width int) Target {
	return Target{Kind: KindThumbnail, Offset: offset, Width: width}
}

func RenditionTarget(width, height int) Target {
	return Target{Kind: KindRendition, Width: width, Height: height}
}

func (t Target) ContentType() string {
	if t.Kind == KindThumbnail {
		return "image/jpeg"
	}
	return "video/mp4"
}

func (t Target) Ext() string {
	if t.Kind == KindThumbnail {
		return ".jpg"
	}
	return ".mp4"
}

type Request struct {
	Source  string
	Target  Target
	Timeout time.Duration
}

// Artifact is the produced media, fully in memory; nothing is left on disk.
type Artifact struct {
	Data        []byte
	ContentType string
	Ext         string
	Elapsed     time.Duration
}

type Encoder interface {
	Start(ctx context.Context, req Request) *Task
}

// Func adapts a plain function to Encoder. fn should return once ctx is done;
// one that does not keeps running after its task has resolved.
type Func func(ctx context.Context, req Request) (*Artifact, error)

func (f Func) Start(ctx context.Context, req Request) *Task {
	return NewTask(ctx, req.Timeout, func(ctx context.Context) (*Artifact, error) {
		return f(ctx, req)
	})
}

// Task is a running encode.
type Task struct {
	done     chan struct{}
	cancel   context.CancelFunc
	artifact *Artifact
	err      error
}

// abandonGrace is how long a task waits for fn to return after its context
// ends before resolving without it. It exceeds the FFmpeg kill delay so a
// killed process still has its temp dir removed first.
var abandonGrace = 5 * time.Second

type result struct {
	art *Artifact
	err error
}

// NewTask runs fn in its own goroutine under a context bounded by timeout
// (no bound when timeout <= 0). Context expiry is reported as an
// EncodeError of kind timeout, cancellation as encoder_failed. A fn that
// ignores ctx is abandoned abandonGrace after expiry so Wait still returns.
func NewTask(parent context.Context, timeout time.Duration, fn func(ctx context.Context) (*Artifact, error)) *Task {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	t := &Task{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(t.done)
		defer cancel()

		start := time.Now()
		res := make(chan result, 1)
		go func() {
			art, err := fn(ctx)
			res <- result{art: art, err: err}
		}()

		var r result
		select {
		case r = <-res:
		case <-ctx.Done():
			select {
			case r = <-res:
			case <-time.After(abandonGrace):
			}
		}

		if r.err == nil && r.art != nil {
			r.art.Elapsed = time.Since(start)
			t.artifact = r.art
			return
		}
		t.err = classify(ctx, r.err)
	}()
	return t
}

func classify(ctx context.Context, err error) error {
	var ee *entity.EncodeError
	if errors.As(err, &ee) {
		return err
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &entity.EncodeError{Kind: entity.EncodeTimeout, Diagnostic: "deadline exceeded", Err: context.DeadlineExceeded}
	case errors.Is(ctx.Err(), context.Canceled):
		return &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: "cancelled", Err: context.Canceled}
	case err == nil:
		return &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: "no result"}
	default:
		return &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: err.Error(), Err: err}
	}
}

// Wait blocks until the task resolves.
func (t *Task) Wait() (*Artifact, error) {
	<-t.done
	return t.artifact, t.err
}

func (t *Task) Cancel() { t.cancel() }

func (t *Task) Done() <-chan struct{} { return t.done }

// Run starts req on enc and waits for it.
func Run(ctx context.Context, enc Encoder, req Request) (*Artifact, error) {
	return enc.Start(ctx, req).Wait()
}
