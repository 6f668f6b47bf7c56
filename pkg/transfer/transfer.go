package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/ligustah/stacfetch/internal/progress"
	"github.com/ligustah/stacfetch/pkg/plan"
	"github.com/ligustah/stacfetch/pkg/storage"
)

// PartialSuffix is appended to the output path while a task is incomplete.
const PartialSuffix = ".partial"

// DefaultBufferSize is the copy buffer used when Options.BufferSize is zero.
const DefaultBufferSize = 1 << 20

// State is the progress of a single task.
type State int

const (
	NotStarted State = iota
	InProgress
	Resuming
	Complete
	SkippedAlreadyDone
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	case Resuming:
		return "resuming"
	case Complete:
		return "complete"
	case SkippedAlreadyDone:
		return "skipped-already-done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result reports what Run did for one task.
type Result struct {
	// State is Complete or SkippedAlreadyDone on success, otherwise the
	// state reached when the error occurred.
	State State

	// Size is the remote object size. Zero when skipped.
	Size int64

	// ResumedFrom is the length of the partial file found on disk.
	ResumedFrom int64

	// Fetched is the number of bytes read from storage by this run.
	Fetched int64
}

// Options configures an Executor.
type Options struct {
	// Logger receives per-task events. Default: no logging.
	Logger *zap.Logger

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// BufferSize is the size of the copy buffer.
	// Default: 1 MiB
	BufferSize int
}

// Executor runs transfer tasks one at a time.
type Executor struct {
	buckets storage.Opener
	opts    Options
}

// New creates an executor reading objects from buckets.
func New(buckets storage.Opener, opts Options) *Executor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	return &Executor{buckets: buckets, opts: opts}
}

// Execute runs the tasks of p in order and stops at the first failure.
// The results of the tasks that ran are returned in both cases.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) ([]Result, error) {
	results := make([]Result, 0, len(p.Tasks))
	for i, task := range p.Tasks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := e.Run(ctx, task)
		results = append(results, res)
		if err != nil {
			e.opts.Logger.Error("task failed",
				zap.Int("task", i+1),
				zap.Int("tasks", len(p.Tasks)),
				zap.String("output", task.Output),
				zap.Error(err),
			)
			return results, err
		}
	}
	return results, nil
}

// Run transfers one object to task.Output.
//
// An existing output file means the task is done and nothing is fetched.
// Otherwise bytes are appended to task.Output+".partial", starting at its
// current length, and the partial file is renamed to task.Output once it
// holds the whole object. On error the partial file keeps every byte
// written so far, so running the task again resumes where it stopped.
func (e *Executor) Run(ctx context.Context, task plan.Task) (Result, error) {
	res := Result{State: NotStarted}
	log := e.opts.Logger.With(
		zap.String("bucket", task.Bucket),
		zap.String("key", task.Key),
		zap.String("output", task.Output),
	)
	fail := func(op string, err error) (Result, error) {
		if e.opts.Progress != nil {
			e.opts.Progress.TaskFailed()
		}
		return res, &Error{Op: op, Bucket: task.Bucket, Key: task.Key, Output: task.Output, Err: err}
	}

	if _, err := os.Stat(task.Output); err == nil {
		res.State = SkippedAlreadyDone
		log.Debug("output exists, skipping")
		if e.opts.Progress != nil {
			e.opts.Progress.TaskSkipped()
		}
		return res, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fail("stat", err)
	}

	if err := os.MkdirAll(filepath.Dir(task.Output), 0o755); err != nil {
		return fail("mkdir", err)
	}

	partialPath := task.Output + PartialSuffix
	f, err := os.OpenFile(partialPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fail("open", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fail("open", err)
	}
	have := info.Size()

	bucket, err := e.buckets.OpenBucket(ctx, task.Bucket)
	if err != nil {
		return fail("open bucket", err)
	}
	attrs, err := bucket.Attributes(ctx, task.Key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			err = fmt.Errorf("%w: %v", ErrObjectNotFound, err)
		}
		return fail("attributes", err)
	}
	total, err := remoteSize(attrs)
	if err != nil {
		return fail("attributes", err)
	}
	res.Size = total

	if have > total {
		log.Warn("partial file is larger than the remote object, restarting",
			zap.Int64("have", have),
			zap.Int64("total", total),
		)
		if err := f.Truncate(0); err != nil {
			return fail("truncate", err)
		}
		have = 0
	}
	res.ResumedFrom = have

	if have > 0 {
		res.State = Resuming
	} else {
		res.State = InProgress
	}
	if e.opts.Progress != nil {
		e.opts.Progress.TaskStarted(task.Output, total, have)
	}

	if have < total {
		log.Info("fetching object",
			zap.Stringer("state", res.State),
			zap.Int64("offset", have),
			zap.Int64("total", total),
		)
		n, err := e.fetch(ctx, bucket, task.Key, f, have, total-have)
		res.Fetched = n
		if err != nil {
			if errors.Is(err, ErrSizeMismatch) {
				return fail("read", err)
			}
			return fail("fetch", err)
		}
	} else {
		log.Info("partial file already complete, finalizing", zap.Int64("total", total))
	}

	if err := f.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := f.Close(); err != nil {
		return fail("close", err)
	}
	if err := os.Rename(partialPath, task.Output); err != nil {
		return fail("finalize", err)
	}

	res.State = Complete
	if e.opts.Progress != nil {
		e.opts.Progress.TaskCompleted()
	}
	log.Info("transfer complete",
		zap.Int64("size", total),
		zap.Int64("fetched", res.Fetched),
	)
	return res, nil
}

// fetch appends length bytes of key, starting at offset, to w.
func (e *Executor) fetch(ctx context.Context, bucket *blob.Bucket, key string, w io.Writer, offset, length int64) (int64, error) {
	r, err := bucket.NewRangeReader(ctx, key, offset, length, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			err = fmt.Errorf("%w: %v", ErrObjectNotFound, err)
		}
		return 0, err
	}
	defer r.Close()

	dst := w
	if e.opts.Progress != nil {
		dst = io.MultiWriter(w, e.opts.Progress)
	}

	buf := make([]byte, e.opts.BufferSize)
	n, err := io.CopyBuffer(dst, io.LimitReader(r, length), buf)
	if err != nil {
		return n, err
	}
	if n != length {
		return n, fmt.Errorf("%w: got %d of %d bytes from offset %d", ErrSizeMismatch, n, length, offset)
	}
	return n, nil
}

// remoteSize returns the object size reported by storage. S3 reports a
// missing Content-Length as size 0, so the raw HEAD response is checked
// when the driver exposes it.
func remoteSize(attrs *blob.Attributes) (int64, error) {
	if attrs == nil || attrs.Size < 0 {
		return 0, ErrSizeUnknown
	}
	var head *s3.HeadObjectOutput
	if attrs.As(&head) && head != nil && head.ContentLength == nil {
		return 0, ErrSizeUnknown
	}
	return attrs.Size, nil
}
