package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Options configures the progress reporter.
type Options struct {
	// TotalTasks is the number of tasks in the plan.
	TotalTasks int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration

	// PlanName is shown in the header, usually the selection id.
	PlanName string
}

// Reporter outputs human-readable progress for the execution of a plan.
// Byte counts are fed through Write, so a Reporter can be the second
// writer of an io.MultiWriter.
type Reporter struct {
	opts Options

	mu         sync.Mutex
	current    string
	taskSize   int64
	taskBytes  atomic.Int64
	resumed    int64
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
	stopCh     chan struct{}
	doneCh     chan struct{}
	started    bool
	stopped    bool

	fetchedBytes   atomic.Int64
	completedTasks atomic.Int32
	skippedTasks   atomic.Int32
	failedTasks    atomic.Int32
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.mu.Lock()
	r.startTime = time.Now()
	r.lastUpdate = r.startTime
	r.started = true
	r.mu.Unlock()

	fmt.Fprintf(r.opts.Output, "[stacfetch] Executing plan: %s (%d tasks)\n", r.opts.PlanName, r.opts.TotalTasks)

	go r.updateLoop()
}

// Stop stops the reporter and prints a summary. It waits for the last
// update to be written.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	close(r.stopCh)
	if started {
		<-r.doneCh
	}
}

// TaskStarted marks the beginning of a transfer of size bytes, of which
// resumedFrom are already on disk.
func (r *Reporter) TaskStarted(output string, size, resumedFrom int64) {
	r.mu.Lock()
	r.current = output
	r.taskSize = size
	r.resumed = resumedFrom
	r.lastBytes = 0
	r.mu.Unlock()
	r.taskBytes.Store(0)
}

// Write counts p as transferred bytes of the current task.
func (r *Reporter) Write(p []byte) (int, error) {
	r.taskBytes.Add(int64(len(p)))
	r.fetchedBytes.Add(int64(len(p)))
	return len(p), nil
}

// TaskCompleted marks the current task as finished.
func (r *Reporter) TaskCompleted() {
	r.completedTasks.Add(1)
	r.clearCurrent()
}

// TaskSkipped marks a task whose output already existed.
func (r *Reporter) TaskSkipped() {
	r.skippedTasks.Add(1)
}

// TaskFailed marks the current task as failed.
func (r *Reporter) TaskFailed() {
	r.failedTasks.Add(1)
	r.clearCurrent()
}

func (r *Reporter) clearCurrent() {
	r.mu.Lock()
	r.current = ""
	r.mu.Unlock()
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == "" {
		return
	}

	now := time.Now()
	fetched := r.taskBytes.Load()

	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(fetched-r.lastBytes) / elapsed
	r.lastUpdate = now
	r.lastBytes = fetched

	have := r.resumed + fetched
	var percent float64
	eta := "calculating..."
	if r.taskSize > 0 {
		percent = float64(have) / float64(r.taskSize) * 100
		if speed > 0 {
			remaining := float64(r.taskSize - have)
			eta = formatDuration(time.Duration(remaining / speed * float64(time.Second)))
		}
	}

	done := int(r.completedTasks.Load() + r.skippedTasks.Load())
	fmt.Fprintf(r.opts.Output, "\r[stacfetch] Task %d/%d %s | %.1f%% | %s / %s | Speed: %s/s | ETA: %s    ",
		done+1,
		r.opts.TotalTasks,
		filepath.Base(r.current),
		percent,
		FormatBytes(have),
		FormatBytes(r.taskSize),
		FormatBytes(int64(speed)),
		eta,
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	r.mu.Lock()
	duration := time.Since(r.startTime)
	r.mu.Unlock()

	fetched := r.fetchedBytes.Load()
	var avgSpeed float64
	if duration > 0 {
		avgSpeed = float64(fetched) / duration.Seconds()
	}

	fmt.Fprintf(r.opts.Output, "\r[stacfetch] Tasks: %d completed | %d skipped | %d failed | %d total    \n",
		r.completedTasks.Load(),
		r.skippedTasks.Load(),
		r.failedTasks.Load(),
		r.opts.TotalTasks,
	)
	fmt.Fprintf(r.opts.Output, "[stacfetch] Fetched %s in %s | Average speed: %s/s\n",
		FormatBytes(fetched),
		formatDuration(duration),
		FormatBytes(int64(avgSpeed)),
	)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes formats b with IEC units, e.g. "1.5 KiB".
func FormatBytes(b int64) string {
	if b < 0 {
		return "-" + humanize.IBytes(uint64(-b))
	}
	return humanize.IBytes(uint64(b))
}

// ParseBytes parses a human-readable byte string. IEC units ("256MiB") are
// powers of 1024, SI units ("1KB") powers of 1000.
func ParseBytes(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid byte string: %s", s)
	}
	return int64(n), nil
}
