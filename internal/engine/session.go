// Package engine owns the DuckDB subprocess behind a session and turns SQL
// statement submissions into discrete results.
//
// The engine binary emits output only for statements that produce rows, so
// completion of a DDL or non-returning statement is not observable from the
// output stream alone. Every submission therefore gets a trailing marker
// query selecting a unique sentinel string; a request is complete when the
// sentinel shows up in the accumulated stdout. Two fallbacks complement the
// marker: an aborted-transaction diagnostic on stderr resolves the request
// immediately (the marker never runs in that state), and a pair of timeouts
// (quiescence after the last byte, plus a hard circuit breaker) force a
// resolution from whatever output accumulated.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/duckpond/duckpond/pkg/duckerr"
)

const (
	// DefaultQuiescence is how long the session waits after the last byte
	// arrived before treating the accumulated output as complete.
	DefaultQuiescence = 50 * time.Millisecond

	// DefaultHardTimeout is the last-resort circuit breaker for requests
	// that produced no completion signal at all.
	DefaultHardTimeout = time.Second

	// closeGrace is how long a closing session lets the subprocess exit on
	// its own (stdin EOF) before killing it.
	closeGrace = 250 * time.Millisecond
)

const markerColumn = "duckpond_marker"

// Config configures a Session.
type Config struct {
	// Binary is the path to the engine executable. Empty means resolve
	// DefaultBinary from PATH (once per process).
	Binary string

	// Locator is the database to open: MemoryLocator or a file path.
	Locator string

	ReadOnly    bool
	Quiescence  time.Duration
	HardTimeout time.Duration
	Logger      *zap.Logger
}

// Result is the raw outcome of one completed statement: the decoded rows of
// its output document, if any.
type Result struct {
	Rows []map[string]any

	// Forced marks a result that was resolved by a timeout fallback rather
	// than by observing the completion marker. Forced results are best
	// effort and may be missing output.
	Forced bool
}

type outcome struct {
	result *Result
	err    error
}

type request struct {
	sql    string
	marker string
	done   chan outcome
}

// Session owns exactly one live engine subprocess. All mutation of the
// subprocess pipes and the accumulation buffers happens on the session's
// internal goroutine; callers interact only through Submit and Close.
type Session struct {
	logger      *zap.Logger
	proc        *process
	quiescence  time.Duration
	hardTimeout time.Duration

	submitCh chan *request
	closeCh  chan struct{}
	stdoutCh chan []byte
	stderrCh chan []byte
	exitedCh chan error

	// dead is closed when the subprocess is gone, making every subsequent
	// Submit fail fast; done is closed when the internal loop has exited.
	dead chan struct{}
	done chan struct{}

	seq       atomic.Uint64
	closeOnce sync.Once
}

// NewSession spawns the engine subprocess and starts the session loop.
// A spawn failure is a construction error; the session never starts.
func NewSession(cfg Config) (*Session, error) {
	binary, err := resolveBinary(cfg.Binary)
	if err != nil {
		return nil, err
	}

	proc, err := spawn(binary, cfg.Locator, cfg.ReadOnly)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		logger:      logger,
		proc:        proc,
		quiescence:  cfg.Quiescence,
		hardTimeout: cfg.HardTimeout,
		submitCh:    make(chan *request),
		closeCh:     make(chan struct{}),
		stdoutCh:    make(chan []byte),
		stderrCh:    make(chan []byte),
		exitedCh:    make(chan error, 1),
		dead:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	if s.quiescence <= 0 {
		s.quiescence = DefaultQuiescence
	}
	if s.hardTimeout <= 0 {
		s.hardTimeout = DefaultHardTimeout
	}

	wg := new(sync.WaitGroup)
	wg.Add(2)
	go s.readPipe(proc.stdout, s.stdoutCh, wg)
	go s.readPipe(proc.stderr, s.stderrCh, wg)
	go func() {
		wg.Wait()
		s.exitedCh <- proc.cmd.Wait()
	}()
	go s.loop()

	recordSessionOpened()
	logger.Debug("engine session started",
		zap.Int("pid", proc.cmd.Process.Pid),
		zap.String("locator", cfg.Locator),
		zap.Bool("read_only", cfg.ReadOnly))

	return s, nil
}

// PID returns the OS process identifier of the engine subprocess.
func (s *Session) PID() int {
	return s.proc.cmd.Process.Pid
}

// Submit sends one SQL statement to the engine and blocks until it resolves.
// Submissions are strictly serialized: a second caller blocks until the
// first request completes. A session whose subprocess has died rejects all
// submissions with a connection-kind error.
func (s *Session) Submit(ctx context.Context, sql string) (*Result, error) {
	req := &request{
		sql:    sql,
		marker: fmt.Sprintf("__duckpond_done_%d__", s.seq.Add(1)),
		done:   make(chan outcome, 1),
	}

	select {
	case s.submitCh <- req:
	case <-s.dead:
		return nil, duckerr.New(duckerr.KindConnection, "session is closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// The request is in flight now; the engine offers no way to interrupt
	// a running statement, so context cancellation here abandons the caller
	// but lets the request drain in the background.
	select {
	case out := <-req.done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close terminates the subprocess and resolves any pending request with a
// connection-kind error. Closing twice, or closing a session whose process
// already died, is a no-op.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		select {
		case s.closeCh <- struct{}{}:
		case <-s.dead:
		}
		<-s.done
	})
	return nil
}

// readPipe feeds one subprocess stream into the session loop chunk by
// chunk. The channel is closed on EOF, which happens when the process exits.
func (s *Session) readPipe(r io.Reader, ch chan<- []byte, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(ch)

	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			ch <- data
		}
		if err != nil {
			return
		}
	}
}

// loop is the session state machine. It is the only goroutine that touches
// the stdin pipe, the accumulation buffers and the pending request slot.
func (s *Session) loop() {
	defer close(s.done)

	var (
		pending   *request
		started   time.Time
		outBuf    bytes.Buffer
		errBuf    bytes.Buffer
		quiet     *time.Timer
		hard      *time.Timer
		killTimer *time.Timer
		closing   bool

		stdoutCh = s.stdoutCh
		stderrCh = s.stderrCh
	)

	stopTimers := func() {
		if quiet != nil {
			quiet.Stop()
			quiet = nil
		}
		if hard != nil {
			hard.Stop()
			hard = nil
		}
	}

	// resetQuiet (re)arms the quiescence timer. It is armed only once at
	// least one byte of output arrived, so a slow statement that has not
	// produced anything yet is bounded by the hard timeout alone.
	resetQuiet := func() {
		if pending == nil {
			return
		}
		if quiet != nil {
			quiet.Stop()
		}
		quiet = time.NewTimer(s.quiescence)
	}

	resolve := func(out outcome, elapsed time.Duration) {
		stopTimers()
		if out.err != nil {
			if typed, ok := out.err.(*duckerr.Error); ok {
				recordError(typed.Kind.String())
			} else {
				recordError(duckerr.KindUnknown.String())
			}
		}
		recordDuration(elapsed.Seconds())
		pending.done <- out
		pending = nil
	}

	// resolvePending classifies the accumulated buffers into the pending
	// request's outcome. Stderr content wins over stdout content.
	resolvePending := func(forced bool) {
		elapsed := time.Since(started)
		if errText := strings.TrimSpace(errBuf.String()); errText != "" {
			resolve(outcome{err: duckerr.ParseDiagnostic(errText)}, elapsed)
			return
		}
		payload := stripMarker(outBuf.String(), pending.marker)
		rows, err := parseRows(payload)
		if err != nil {
			// Deliberate leniency: unparseable output is logged and
			// downgraded to an empty result so the session stays usable.
			s.logger.Warn("discarding unparseable engine output",
				zap.Error(err),
				zap.Int("bytes", len(payload)))
			rows = nil
		}
		resolve(outcome{result: &Result{Rows: rows, Forced: forced}}, elapsed)
	}

	for {
		recv := s.submitCh
		if pending != nil || closing {
			recv = nil
		}
		var quietC, hardC <-chan time.Time
		if quiet != nil {
			quietC = quiet.C
		}
		if hard != nil {
			hardC = hard.C
		}

		select {
		case req := <-recv:
			outBuf.Reset()
			errBuf.Reset()
			payload := fmt.Sprintf("%s\nSELECT '%s' AS %s;\n", req.sql, req.marker, markerColumn)
			if _, err := io.WriteString(s.proc.stdin, payload); err != nil {
				req.done <- outcome{err: duckerr.New(duckerr.KindConnection, "write to engine: %v", err)}
				continue
			}
			pending = req
			started = time.Now()
			hard = time.NewTimer(s.hardTimeout)
			recordStatement()

		case data, ok := <-stdoutCh:
			if !ok {
				stdoutCh = nil
				continue
			}
			outBuf.Write(data)
			if pending == nil {
				continue
			}
			resetQuiet()
			if strings.Contains(outBuf.String(), pending.marker) {
				resolvePending(false)
			}

		case data, ok := <-stderrCh:
			if !ok {
				stderrCh = nil
				continue
			}
			errBuf.Write(data)
			if pending == nil {
				continue
			}
			resetQuiet()
			// An aborted transaction stops the marker query from ever
			// running, so the diagnostic itself is the completion signal.
			if duckerr.IsTransactionAborted(errBuf.String()) {
				resolve(outcome{err: duckerr.ParseDiagnostic(errBuf.String())}, time.Since(started))
			}

		case <-quietC:
			quiet = nil
			recordForcedResolution()
			resolvePending(true)

		case <-hardC:
			hard = nil
			s.logger.Warn("statement hit hard timeout, resolving with partial output",
				zap.Int("stdout_bytes", outBuf.Len()),
				zap.Int("stderr_bytes", errBuf.Len()))
			recordForcedResolution()
			resolvePending(true)

		case <-s.closeCh:
			if pending != nil {
				resolve(outcome{err: duckerr.New(duckerr.KindConnection, "session is closing")}, time.Since(started))
			}
			closing = true
			_ = s.proc.stdin.Close()
			killTimer = time.AfterFunc(closeGrace, func() {
				_ = s.proc.cmd.Process.Kill()
			})

		case err := <-s.exitedCh:
			if killTimer != nil {
				killTimer.Stop()
			}
			if pending != nil {
				resolve(outcome{err: duckerr.New(duckerr.KindConnection, "engine process exited: %v", err)}, time.Since(started))
			}
			stopTimers()
			if !closing && err != nil {
				s.logger.Warn("engine process died", zap.Error(err))
			}
			close(s.dead)
			recordSessionClosed()
			return
		}
	}
}
