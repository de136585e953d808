package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"media-job-service/internal/entity"
)

var commandContext = exec.CommandContext

const maxDiagnostic = 512

type Option func(*FFmpeg)

func WithBinary(binary string) Option {
	return func(f *FFmpeg) {
		if binary != "" {
			f.binary = binary
		}
	}
}

// WithTempDir sets the parent of per-task scratch directories.
func WithTempDir(dir string) Option {
	return func(f *FFmpeg) { f.tempDir = dir }
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *FFmpeg) { f.logger = l }
}

// FFmpeg encodes with a local ffmpeg process per task.
type FFmpeg struct {
	binary    string
	tempDir   string
	waitDelay time.Duration
	logger    zerolog.Logger
}

func NewFFmpeg(opts ...Option) *FFmpeg {
	f := &FFmpeg{binary: "ffmpeg", waitDelay: 2 * time.Second, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FFmpeg) Start(ctx context.Context, req Request) *Task {
	return NewTask(ctx, req.Timeout, func(ctx context.Context) (*Artifact, error) {
		return f.encode(ctx, req)
	})
}

func (f *FFmpeg) encode(ctx context.Context, req Request) (*Artifact, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		return nil, &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: "source is required", Err: entity.ErrInvalidInput}
	}

	dir, err := os.MkdirTemp(f.tempDir, "encode-*")
	if err != nil {
		return nil, &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: "scratch dir", Err: err}
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "out"+req.Target.Ext())
	args, err := buildArgs(source, req.Target, out)
	if err != nil {
		return nil, &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: err.Error(), Err: entity.ErrInvalidInput}
	}

	cmd := commandContext(ctx, f.binary, args...) //nolint:gosec
	setProcessGroup(cmd)
	cmd.WaitDelay = f.waitDelay

	f.logger.Debug().Str("kind", string(req.Target.Kind)).Str("source", source).Msg("ffmpeg start")
	output, runErr := cmd.CombinedOutput()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, &entity.EncodeError{Kind: entity.EncodeTimeout, Diagnostic: "ffmpeg killed after deadline", Err: ctxErr}
		}
		return nil, &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: "cancelled", Err: ctxErr}
	}
	if runErr != nil {
		return nil, &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: diagnostic(runErr, output), Err: runErr}
	}

	data, err := os.ReadFile(out)
	if err != nil || len(data) == 0 {
		return nil, &entity.EncodeError{Kind: entity.EncodeEncoderFailed, Diagnostic: "ffmpeg produced no output", Err: err}
	}

	return &Artifact{
		Data:        data,
		ContentType: req.Target.ContentType(),
		Ext:         req.Target.Ext(),
	}, nil
}

func buildArgs(source string, target Target, out string) ([]string, error) {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}

	switch target.Kind {
	case KindThumbnail:
		if target.Width <= 0 {
			return nil, fmt.Errorf("thumbnail width must be positive, got %d", target.Width)
		}
		args = append(args,
			"-ss", strconv.FormatFloat(target.Offset.Seconds(), 'f', 3, 64),
			"-i", source,
			"-frames:v", "1",
			"-vf", fmt.Sprintf("scale=%d:-2", target.Width),
			"-q:v", "3",
			out,
		)
	case KindRendition:
		if target.Width <= 0 {
			return nil, fmt.Errorf("rendition width must be positive, got %d", target.Width)
		}
		height := target.Height
		if height <= 0 {
			height = -2
		}
		args = append(args,
			"-i", source,
			"-vf", fmt.Sprintf("scale=%d:%d", target.Width, height),
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "23",
			"-c:a", "aac",
			"-b:a", "128k",
			"-movflags", "+faststart",
			out,
		)
	default:
		return nil, fmt.Errorf("unknown target kind %q", target.Kind)
	}
	return args, nil
}

func diagnostic(err error, output []byte) string {
	msg := strings.TrimSpace(string(output))
	if len(msg) > maxDiagnostic {
		msg = "..." + msg[len(msg)-maxDiagnostic:]
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg == "" {
			return fmt.Sprintf("ffmpeg exited with code %d", exitErr.ExitCode())
		}
		return fmt.Sprintf("ffmpeg exited with code %d: %s", exitErr.ExitCode(), msg)
	}
	if msg == "" {
		return err.Error()
	}
	return err.Error() + ": " + msg
}
