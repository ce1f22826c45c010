package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// RunnerConfig holds configuration for a multi-step command
type RunnerConfig struct {
	Title     string   // Command title (e.g., "Region Scan")
	Command   string   // Full command (e.g., "argus scan -c US")
	Params    []Field  // Parameters to display in header
	StepNames []string // One name per step
	Verbose   bool     // Show list boxes after the result
	// Live redraws running steps and counters in place. Leave it off when
	// output is not a terminal.
	Live   bool
	Output io.Writer               // Output writer (default: os.Stdout)
	Hints  func(err error) []string // Troubleshooting tips for a failure
	Width  int                      // Render width (0 = terminal width)
}

// Runner orchestrates the header → steps → result flow of a command and
// hands the operation a step callback for reporting progress.
type Runner struct {
	config    RunnerConfig
	header    *Header
	progress  *Progress
	output    io.Writer
	width     int
	startTime time.Time

	mu       sync.Mutex
	lastLive bool
	lists    []*ListBox
	warnings []*Result
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := config.Width
	if width <= 0 {
		width = GetTerminalWidth()
	}

	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	progress := NewProgress("", len(config.StepNames))
	progress.SetWidth(width)
	progress.SetStepNames(config.StepNames)

	return &Runner{
		config:   config,
		header:   header,
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// Operation is the work a Runner wraps. It reports progress through onStep
// and returns the details shown in the success box.
type Operation func(ctx context.Context, onStep StepCallback) ([]Field, error)

// Run prints the header, executes the operation and prints the result.
// Details returned by the operation are shown with the elapsed time.
func (r *Runner) Run(ctx context.Context, op Operation) ([]Field, error) {
	r.startTime = time.Now()

	r.println(r.header.Render())
	r.println("")

	details, err := op(ctx, r.onStep)
	duration := time.Since(r.startTime)
	r.endLive()

	if err != nil {
		r.printFailure(err)
		return details, err
	}

	details = append(details, Field{Key: "Duration", Value: duration.Round(time.Millisecond).String()})
	r.printSuccess(details)
	return details, nil
}

// AddList queues a list box printed after the result in verbose mode
func (r *Runner) AddList(box *ListBox) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, box.SetWidth(r.width))
}

// AddWarning queues a warning box printed after the result
func (r *Runner) AddWarning(title string, details []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, NewWarningResult(title, details).SetWidth(r.width))
}

// Counter redraws an item counter bar in place. It is a no-op unless Live
// is set. Safe for concurrent use.
func (r *Runner) Counter(label string, done, total int) {
	if !r.config.Live {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprint(r.output, "\r\033[K"+r.progress.RenderCounter(label, done, total))
	r.lastLive = true
}

// Println prints a line between steps, clearing any live line first.
// Safe for concurrent use.
func (r *Runner) Println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLiveLocked()
	_, _ = fmt.Fprintln(r.output, line)
}

func (r *Runner) onStep(stepNumber int, status StepStatus, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	r.progress.UpdateStep(stepNumber, status, message)
	line := r.progress.RenderStepLine(r.progress.Steps[stepNumber-1])

	r.clearLiveLocked()
	switch status {
	case StepRunning:
		if r.config.Live {
			_, _ = fmt.Fprint(r.output, line)
			r.lastLive = true
		}
	default:
		_, _ = fmt.Fprintln(r.output, line)
	}
}

func (r *Runner) clearLiveLocked() {
	if r.lastLive {
		_, _ = fmt.Fprint(r.output, "\r\033[K")
		r.lastLive = false
	}
}

func (r *Runner) endLive() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLiveLocked()
}

func (r *Runner) printSuccess(details []Field) {
	r.println("")
	result := NewSuccessResult(r.config.Title+" complete", details)
	result.SetWidth(r.width)
	r.println(result.Render())
	r.printQueued()
}

func (r *Runner) printFailure(err error) {
	r.println("")
	var tips []string
	if r.config.Hints != nil {
		tips = r.config.Hints(err)
	}
	result := NewFailureResult(r.config.Title+" failed", err, tips)
	result.SetWidth(r.width)
	r.println(result.Render())
	r.printQueued()
}

func (r *Runner) printQueued() {
	for _, w := range r.warnings {
		r.println("")
		r.println(w.Render())
	}
	if !r.config.Verbose {
		return
	}
	for _, box := range r.lists {
		r.println("")
		r.println(box.Render())
	}
}

func (r *Runner) println(s string) {
	_, _ = fmt.Fprintln(r.output, s)
}

// JoinInts formats page indices for display, e.g. "2, 5, 9"
func JoinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
