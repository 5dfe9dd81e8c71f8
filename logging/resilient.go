// Package logging provides the durable log file writer used by the capture
// session, with failure tracking and escalation to a fallback structured sink.
package logging

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nvr-ai/go-motion/motion"
)

// timestampLayout matches the log line format: one line per entry,
// "<yyyy-MM-dd HH:mm:ss.fff>: <message>".
const timestampLayout = "2006-01-02 15:04:05.000"

// DefaultMaxConsecutiveFailures is the reference escalation threshold.
const DefaultMaxConsecutiveFailures = 5

// DefaultNotificationCooldown rate-limits the critical-failure user
// notification.
const DefaultNotificationCooldown = 5 * time.Minute

// Severity classifies entries forwarded to the fallback sink.
type Severity int

const (
	// SeverityWarning: the file append failed but the threshold has not been
	// reached.
	SeverityWarning Severity = iota
	// SeverityError: the consecutive-failure threshold has been reached.
	SeverityError
)

// FallbackSink receives entries that could not be written to the log file.
// Implementations are external collaborators (e.g. an OS event log) and must
// be assumed to be unavailable in restricted environments: a sink failure is
// swallowed by the logger.
type FallbackSink interface {
	Write(source, message string, severity Severity) error
}

// SlogSink adapts a slog.Logger into a FallbackSink.
type SlogSink struct {
	Logger *slog.Logger
}

// Write forwards the entry at the level matching its severity.
func (s SlogSink) Write(source, message string, severity Severity) error {
	if s.Logger == nil {
		return nil
	}
	if severity == SeverityError {
		s.Logger.Error(message, "source", source)
	} else {
		s.Logger.Warn(message, "source", source)
	}
	return nil
}

// Notifier surfaces a critical-failure message to the operator. Called at most
// once per notification cooldown.
type Notifier func(message string)

// Options configures a ResilientLogger. Zero values fall back to the reference
// defaults; a nil Fallback discards escalated entries.
type Options struct {
	// Path is the durable log file. It is created on first append.
	Path string
	// Source names this logger in fallback sink entries.
	Source string
	// MaxConsecutiveFailures is the escalation threshold.
	MaxConsecutiveFailures int
	// NotificationCooldown rate-limits the critical-failure notification.
	NotificationCooldown time.Duration
	// Fallback receives entries when the file is unwritable.
	Fallback FallbackSink
	// Notify surfaces the critical-failure notification, if set.
	Notify Notifier
	// Diagnostics receives best-effort reports of fallback sink failures.
	Diagnostics *slog.Logger
}

// ResilientLogger appends timestamped lines to a durable log file. It tracks
// consecutive write failures and escalates to the fallback sink, plus a
// rate-limited user notification, once the failure threshold is reached.
//
// Logging never panics and never propagates an error to the frame pipeline.
// Each append is a single bounded open-write-close attempt, not a retry loop.
type ResilientLogger struct {
	mu          sync.Mutex
	path        string
	source      string
	maxFailures int

	consecutiveFailures int
	criticallyFailed    bool

	fallback    FallbackSink
	notify      Notifier
	notifyClock *motion.Clock
	diagnostics *slog.Logger

	// append performs the file write; replaced in tests to simulate failures.
	append func(line string) error
}

// New constructs a ResilientLogger from opts.
func New(opts Options) *ResilientLogger {
	if opts.MaxConsecutiveFailures <= 0 {
		opts.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	if opts.NotificationCooldown <= 0 {
		opts.NotificationCooldown = DefaultNotificationCooldown
	}
	l := &ResilientLogger{
		path:        opts.Path,
		source:      opts.Source,
		maxFailures: opts.MaxConsecutiveFailures,
		fallback:    opts.Fallback,
		notify:      opts.Notify,
		notifyClock: motion.NewClock(opts.NotificationCooldown),
		diagnostics: opts.Diagnostics,
	}
	l.append = l.appendFile
	return l
}

// Log appends a timestamped line for message to the log file.
//
// A successful append resets the failure counter and clears the critical flag.
// A failed append increments the counter and forwards the message to the
// fallback sink: as a warning below the threshold, as an error once the
// threshold is reached, at which point the logger is critically failed. While
// critically failed, Log skips the file entirely and goes straight to the
// fallback sink; recovery requires an explicit Retry.
func (l *ResilientLogger) Log(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log(message, time.Now())
}

func (l *ResilientLogger) log(message string, now time.Time) {
	if l.criticallyFailed {
		l.writeFallback(message, SeverityError)
		l.maybeNotify(now)
		return
	}

	line := now.Format(timestampLayout) + ": " + message + "\n"
	if err := l.append(line); err != nil {
		l.consecutiveFailures++
		severity := SeverityWarning
		if l.consecutiveFailures >= l.maxFailures {
			severity = SeverityError
			l.criticallyFailed = true
		}
		l.writeFallback(message, severity)
		if l.criticallyFailed {
			l.maybeNotify(now)
		}
		return
	}

	l.consecutiveFailures = 0
	l.criticallyFailed = false
}

// Retry attempts a single file append to probe whether the log file is
// writable again. On success the failure counter and critical flag are
// cleared. The retry policy is deliberately caller-driven: a critically failed
// logger never re-attempts the file on its own.
func (l *ResilientLogger) Retry() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := time.Now().Format(timestampLayout) + ": log file recovered\n"
	if err := l.append(line); err != nil {
		l.consecutiveFailures++
		return false
	}
	l.consecutiveFailures = 0
	l.criticallyFailed = false
	return true
}

// Health reports the current failure count and whether the logger is
// critically failed.
func (l *ResilientLogger) Health() (consecutiveFailures int, criticallyFailed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consecutiveFailures, l.criticallyFailed
}

func (l *ResilientLogger) appendFile(line string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(line)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

func (l *ResilientLogger) writeFallback(message string, severity Severity) {
	if l.fallback == nil {
		return
	}
	if err := l.fallback.Write(l.source, message, severity); err != nil && l.diagnostics != nil {
		// Best effort only. The fallback sink may be unavailable in restricted
		// environments and its failure must never reach the frame pipeline.
		l.diagnostics.Debug("fallback log sink write failed", "error", err)
	}
}

func (l *ResilientLogger) maybeNotify(now time.Time) {
	if l.notify == nil {
		return
	}
	if l.notifyClock.TryFire(now) {
		l.notify("logging has critically failed; entries are going to the fallback sink only")
	}
}
