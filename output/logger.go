package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Stage names one of the orchestrator's pipeline phases. Keeping timing
// keyed to a closed set of named stages (rather than arbitrary strings)
// lets PrintTimingSummary report them in pipeline order instead of
// whatever order a map happens to range over.
type Stage string

const (
	StageIntrospect    Stage = "introspect"
	StageLoadReference Stage = "load-reference"
	StageDispatch      Stage = "dispatch"
)

// stageOrder is the canonical reporting order for PrintTimingSummary.
var stageOrder = []Stage{StageIntrospect, StageLoadReference, StageDispatch}

// Logger provides structured logging with verbosity control, plus a
// terminal-aware progress bar used while the dispatcher walks the rule
// list for the current run.
type Logger struct {
	verbosity    VerbosityLevel
	writer       io.Writer
	startTime    time.Time
	timings      map[Stage]time.Duration
	isTTY        bool
	termWidth    int
	progressBar  *progressbar.ProgressBar
	showProgress bool
}

// NewLogger creates a logger with the specified verbosity.
// Output goes to stderr to keep stdout clean for the CSV report path.
func NewLogger(verbosity VerbosityLevel) *Logger {
	writer := os.Stderr
	isTTY := isTerminal(writer)
	return &Logger{
		verbosity:    verbosity,
		writer:       writer,
		startTime:    time.Now(),
		timings:      make(map[Stage]time.Duration),
		isTTY:        isTTY,
		termWidth:    terminalWidth(writer),
		showProgress: isTTY,
	}
}

// NewLoggerWithWriter creates a logger with custom output writer.
// Primarily used for testing.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	isTTY := isTerminal(w)
	return &Logger{
		verbosity:    verbosity,
		writer:       w,
		startTime:    time.Now(),
		timings:      make(map[Stage]time.Duration),
		isTTY:        isTTY,
		termWidth:    terminalWidth(w),
		showProgress: isTTY,
	}
}

// isTerminal reports whether w is connected to a terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// terminalWidth returns the terminal column width of w, or 80 when w isn't
// a terminal or the size can't be queried. Used to size the rule-evaluation
// progress bar so it doesn't wrap on narrow terminals or look stubby on
// wide ones.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return 80
}

// progressBarWidth derives a progress-bar column width from the logger's
// detected terminal width, leaving room for the description, count, and
// percentage the bar renders alongside it.
func progressBarWidth(termWidth int) int {
	w := termWidth - 40
	if w < 20 {
		return 20
	}
	if w > 60 {
		return 60
	}
	return w
}

// Progress logs progress messages (shown in verbose and debug modes).
// Use for high-level progress like "evaluating N rule(s) for category...".
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Statistic logs statistics (shown in verbose and debug modes).
// Use for counts like "found N file(s), N gpkg layer(s)".
func (l *Logger) Statistic(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs debug diagnostics (shown only in debug mode).
// Includes elapsed time prefix for performance analysis.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		elapsed := time.Since(l.startTime)
		prefix := formatDuration(elapsed)
		fmt.Fprintf(l.writer, "[%s] %s\n", prefix, fmt.Sprintf(format, args...))
	}
}

// Warning logs warnings (always shown).
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// Error logs errors (always shown).
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Error: %s\n", fmt.Sprintf(format, args...))
}

// StartTiming begins timing a named pipeline stage.
func (l *Logger) StartTiming(stage Stage) func() {
	start := time.Now()
	return func() {
		l.timings[stage] = time.Since(start)
	}
}

// GetTiming returns the duration recorded for a stage.
func (l *Logger) GetTiming(stage Stage) time.Duration {
	return l.timings[stage]
}

// GetAllTimings returns all recorded stage timings.
func (l *Logger) GetAllTimings() map[Stage]time.Duration {
	result := make(map[Stage]time.Duration, len(l.timings))
	for k, v := range l.timings {
		result[k] = v
	}
	return result
}

// PrintTimingSummary prints recorded stage timings in pipeline order
// (introspect, load-reference, dispatch), followed by any other timed
// stage a caller recorded under a name outside that set. Verbose mode only.
func (l *Logger) PrintTimingSummary() {
	if l.verbosity < VerbosityVerbose {
		return
	}
	fmt.Fprintln(l.writer, "\nTiming Summary:")
	printed := make(map[Stage]bool, len(stageOrder))
	for _, stage := range stageOrder {
		d, ok := l.timings[stage]
		if !ok {
			continue
		}
		fmt.Fprintf(l.writer, "  %s: %s\n", stage, d.Round(time.Millisecond))
		printed[stage] = true
	}
	for stage, d := range l.timings {
		if printed[stage] {
			continue
		}
		fmt.Fprintf(l.writer, "  %s: %s\n", stage, d.Round(time.Millisecond))
	}
}

// formatDuration formats duration as MM:SS.mmm.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

// Verbosity returns the current verbosity level.
func (l *Logger) Verbosity() VerbosityLevel {
	return l.verbosity
}

// IsVerbose returns true if verbose or debug mode is enabled.
func (l *Logger) IsVerbose() bool {
	return l.verbosity >= VerbosityVerbose
}

// IsDebug returns true if debug mode is enabled.
func (l *Logger) IsDebug() bool {
	return l.verbosity >= VerbosityDebug
}

// IsTTY returns true if the logger's output is connected to a terminal.
func (l *Logger) IsTTY() bool {
	return l.isTTY
}

// GetWriter returns the logger's output writer.
func (l *Logger) GetWriter() io.Writer {
	return l.writer
}

// StartRuleProgress creates and displays a progress bar tracking how many
// of a category's ruleCount rules the dispatcher has evaluated so far.
// In non-TTY mode it falls back to a single Progress line.
func (l *Logger) StartRuleProgress(ruleCount int) error {
	return l.StartProgress(fmt.Sprintf("evaluating %d rule(s)", ruleCount), ruleCount)
}

// StartProgress creates and displays a progress bar.
// For indeterminate operations (total = -1), shows a spinner.
// For determinate operations (total > 0), shows percentage progress,
// sized to the detected terminal width.
func (l *Logger) StartProgress(description string, total int) error {
	if !l.showProgress || !l.isTTY {
		// In non-TTY mode, just print the description.
		l.Progress("%s...", description)
		return nil
	}

	// Clear any existing progress bar.
	if l.progressBar != nil {
		_ = l.progressBar.Finish()
	}

	width := progressBarWidth(l.termWidth)
	if total < 0 {
		// Indeterminate progress (spinner).
		l.progressBar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(l.writer),
			progressbar.OptionSetWidth(width),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintf(l.writer, "\n")
			}),
		)
	} else {
		// Determinate progress (percentage bar) - one increment per rule.
		l.progressBar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(l.writer),
			progressbar.OptionSetWidth(width),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintf(l.writer, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	return nil
}

// UpdateProgress increments the progress bar by delta - the dispatcher
// calls this with delta=1 after each rule it evaluates.
func (l *Logger) UpdateProgress(delta int) error {
	if !l.showProgress || !l.isTTY || l.progressBar == nil {
		return nil
	}

	return l.progressBar.Add(delta)
}

// FinishProgress completes and clears the progress bar.
func (l *Logger) FinishProgress() error {
	if !l.showProgress || !l.isTTY || l.progressBar == nil {
		return nil
	}

	err := l.progressBar.Finish()
	l.progressBar = nil
	return err
}

// SetProgressDescription updates the progress bar description - used by
// the dispatcher to show which rule number is currently running.
func (l *Logger) SetProgressDescription(description string) {
	if !l.showProgress || !l.isTTY || l.progressBar == nil {
		return
	}

	l.progressBar.Describe(description)
}

// IsProgressEnabled returns true if progress bars are enabled.
func (l *Logger) IsProgressEnabled() bool {
	return l.showProgress && l.isTTY
}
