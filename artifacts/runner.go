// Package artifacts runs the shell scripts that verify session artifacts
// (video, command logs) on the grid once a test has finished.
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/livefir/gridkit"
	"golang.org/x/sync/errgroup"
)

// Script names looked up in the runner's script directory
const (
	VideoScript       = "video.sh"
	CommandLogsScript = "command_logs.sh"
)

// Result holds the output of one command
type Result struct {
	Stdout   []string
	Stderr   []string
	ExitCode int
}

// Success reports a zero exit code
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// DefaultWaitDelay bounds how long Run keeps reading output once the command
// has exited or its context is done
const DefaultWaitDelay = gridkit.ShortestWait

// Runner executes verification scripts.
type Runner struct {
	// ScriptsDir holds video.sh and command_logs.sh
	ScriptsDir string
	Logger     *slog.Logger
	// WaitDelay overrides DefaultWaitDelay when positive
	WaitDelay time.Duration
}

// NewRunner creates a Runner for scripts under dir
func NewRunner(dir string) *Runner {
	return &Runner{ScriptsDir: dir}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return gridkit.Logger()
}

// Run executes command (program first, then its arguments). Every stdout
// line is logged at info and every stderr line at error; a non-zero exit code
// is logged and reported in the Result, not as an error. Only a command that
// cannot be started, or a cancelled ctx, returns an error.
//
// Output still held open by a background child is abandoned WaitDelay after
// the command exits or ctx is done.
func (r *Runner) Run(ctx context.Context, command []string) (*Result, error) {
	if len(command) == 0 {
		return nil, errors.New("empty command")
	}
	log := r.logger()

	stdout := &lineWriter{each: func(line string) {
		log.Info("standard output", "line", line)
	}}
	stderr := &lineWriter{each: func(line string) {
		log.Error("standard error", "line", line)
	}}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	if err := cmd.Start(); err != nil {
		log.Error("failed to start command", "command", command, "error", err)
		return nil, fmt.Errorf("starting %s: %w", command[0], err)
	}

	err := cmd.Wait()
	res := &Result{Stdout: stdout.flush(), Stderr: stderr.flush()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.Is(err, exec.ErrWaitDelay):
		log.Warn("output left open after exit, abandoning it", "command", command[0])
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("waiting for %s: %w", command[0], err)
	}

	if res.ExitCode != 0 {
		log.Info("command exited", "command", command[0], "exit_code", res.ExitCode)
	}
	return res, nil
}

// lineWriter splits what a command writes into lines. Lines have no length
// limit; a trailing line without a newline is emitted by flush.
type lineWriter struct {
	mu      sync.Mutex
	pending []byte
	lines   []string
	each    func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.emit(w.pending[:i])
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) emit(b []byte) {
	line := string(bytes.TrimSuffix(b, []byte("\r")))
	w.each(line)
	w.lines = append(w.lines, line)
}

func (w *lineWriter) flush() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) > 0 {
		w.emit(w.pending)
		w.pending = nil
	}
	return w.lines
}

func (r *Runner) script(name, sessionID, user, accessKey string) []string {
	return []string{filepath.Join(r.ScriptsDir, name), sessionID, user, accessKey}
}

// CheckVideo runs the video verification script for a session
func (r *Runner) CheckVideo(ctx context.Context, sessionID, user, accessKey string) (*Result, error) {
	cmd := r.script(VideoScript, sessionID, user, accessKey)
	r.logger().Info("video verification command", "script", cmd[0], "session_id", sessionID)
	return r.Run(ctx, cmd)
}

// CheckCommandLogs runs the command log verification script for a session
func (r *Runner) CheckCommandLogs(ctx context.Context, sessionID, user, accessKey string) (*Result, error) {
	cmd := r.script(CommandLogsScript, sessionID, user, accessKey)
	r.logger().Info("command logs verification command", "script", cmd[0], "session_id", sessionID)
	return r.Run(ctx, cmd)
}

// Report collects the results of CheckAll
type Report struct {
	Video       *Result
	CommandLogs *Result
}

// CheckAll runs both verification scripts concurrently and waits for them
func (r *Runner) CheckAll(ctx context.Context, sessionID, user, accessKey string) (*Report, error) {
	rep := &Report{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.CheckVideo(ctx, sessionID, user, accessKey)
		rep.Video = res
		return err
	})
	g.Go(func() error {
		res, err := r.CheckCommandLogs(ctx, sessionID, user, accessKey)
		rep.CommandLogs = res
		return err
	})
	if err := g.Wait(); err != nil {
		return rep, err
	}
	return rep, nil
}
