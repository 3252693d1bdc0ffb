// Package listener owns the lifecycle of the companion event-listener
// process: a single live child at a time, spawned with a derived environment
// and terminated from every shutdown path through one idempotent entry point.
package listener

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"gorm.io/gorm"
)

// terminateWait bounds how long Terminate blocks for the child to exit after
// SIGTERM. The command's WaitDelay escalates to SIGKILL before this elapses.
const terminateWait = 15 * time.Second

// SpawnError reports a failure to start the listener process. It is fatal to
// the login attempt; no retry is attempted automatically.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("listener: spawn: %v", e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// SupervisorOpts holds parameters for creating a Supervisor.
type SupervisorOpts struct {
	Command []string // argv of the listener, e.g. ["mvn", "spring-boot:run"]
	WorkDir string   // working directory for the listener project
	DB      *gorm.DB // optional: capture child output into listener_logs
}

// Supervisor manages at most one live listener process.
type Supervisor struct {
	command []string
	workDir string
	db      *gorm.DB

	mu   sync.Mutex
	proc *process
}

// process is one spawned listener instance.
type process struct {
	sessionID string
	cmd       *exec.Cmd
	cancel    context.CancelFunc
	waitCh    chan error // buffered(1), receives exit result then closes
}

// NewSupervisor creates a Supervisor. The command and working directory come
// from daemon configuration, not from login requests.
func NewSupervisor(opts SupervisorOpts) (*Supervisor, error) {
	if len(opts.Command) == 0 {
		return nil, fmt.Errorf("listener: command is required")
	}
	if opts.WorkDir == "" {
		return nil, fmt.Errorf("listener: work dir is required")
	}
	return &Supervisor{
		command: opts.Command,
		workDir: opts.WorkDir,
		db:      opts.DB,
	}, nil
}

// generateSessionID creates a unique listener session ID in lsn-xxxxxxxx form.
func generateSessionID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("listener: generate session ID: %w", err)
	}
	return "lsn-" + hex.EncodeToString(b), nil
}

// Spawn starts the listener with the given environment appended to the
// daemon's own. An existing live process is terminated first — there is never
// a second live listener.
func (s *Supervisor) Spawn(ctx context.Context, env map[string]string) error {
	s.mu.Lock()
	if s.proc != nil {
		old := s.takeLocked()
		s.mu.Unlock()
		stop(old)
		s.mu.Lock()
	}
	defer s.mu.Unlock()

	sessionID, err := generateSessionID()
	if err != nil {
		return err
	}

	// The child's lifetime belongs to the supervisor, not the spawning call.
	// A login request's context ends with its HTTP response; the listener
	// must keep running until logout, supersession, self-exit or shutdown.
	procCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd := exec.CommandContext(procCtx, s.command[0], s.command[1:]...)
	cmd.Dir = s.workDir
	cmd.Env = os.Environ()
	for key, value := range env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	// Process group so SIGTERM reaches the whole tree (build tools fork).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = 10 * time.Second

	stdoutWriter := newLogWriter(s.db, sessionID, "out")
	stderrWriter := newLogWriter(s.db, sessionID, "err")
	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter

	if err := cmd.Start(); err != nil {
		cancel()
		return &SpawnError{Err: err}
	}

	waitCh := make(chan error, 1)
	p := &process{sessionID: sessionID, cmd: cmd, cancel: cancel, waitCh: waitCh}
	s.proc = p

	flushCtx, flushCancel := context.WithCancel(context.Background())
	startFlusher(flushCtx, stdoutWriter, defaultFlushInterval)
	startFlusher(flushCtx, stderrWriter, defaultFlushInterval)

	go func() {
		waitErr := cmd.Wait()
		flushCancel()
		stdoutWriter.Close()
		stderrWriter.Close()

		// Self-exit detection: release the handle if it is still ours.
		s.mu.Lock()
		if s.proc == p {
			s.proc = nil
			log.Printf("listener: process %s exited on its own: %v", sessionID, waitErr)
		}
		s.mu.Unlock()

		waitCh <- waitErr
		close(waitCh)
	}()

	return nil
}

// Terminate stops the live listener, blocking until it has exited. With no
// live process it is a logged no-op; every shutdown path (logout,
// supersession, exit hook, termination signal) converges here.
func (s *Supervisor) Terminate() {
	s.mu.Lock()
	p := s.takeLocked()
	s.mu.Unlock()

	if p == nil {
		log.Printf("listener: terminate: no live process")
		return
	}
	stop(p)
}

// takeLocked detaches and returns the live process handle. Caller holds mu.
func (s *Supervisor) takeLocked() *process {
	p := s.proc
	s.proc = nil
	return p
}

// stop signals the process group and waits for exit.
func stop(p *process) {
	p.cancel()
	select {
	case <-p.waitCh:
	case <-time.After(terminateWait):
		log.Printf("listener: process %s did not exit within %s", p.sessionID, terminateWait)
	}
}

// Running reports whether a listener process is currently live.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc != nil
}

// Pid returns the live process ID, or 0 when none.
func (s *Supervisor) Pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return 0
	}
	return s.proc.cmd.Process.Pid
}

// SessionID returns the live listener session ID, or empty when none.
func (s *Supervisor) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return ""
	}
	return s.proc.sessionID
}
