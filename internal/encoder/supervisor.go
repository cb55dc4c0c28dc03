package encoder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/metrics"
)

const defaultWatchInterval = time.Second

// Config describes the encoder processes of one stream.
type Config struct {
	Binary        string
	Input         string
	FineTune      string
	OverlayPath   string
	Resolution    image.Point
	FrameRate     int
	Main          string
	Backup        string
	IntroFile     string
	EndFile       string
	WatchInterval time.Duration
	Log           io.Writer
}

// Terminator is the shared force-end flag of a running game.
type Terminator interface {
	Ended() bool
}

// Supervisor owns the encoder processes. It never reads or writes game state.
type Supervisor struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Recorder

	mu     sync.Mutex
	main   *process
	backup *process
	sleep  func(context.Context, time.Duration) error
}

// NewSupervisor returns a Supervisor for cfg.
func NewSupervisor(cfg Config, logger *slog.Logger, recorder *metrics.Recorder) *Supervisor {
	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = defaultWatchInterval
	}
	return &Supervisor{cfg: cfg, logger: logger, metrics: recorder, sleep: sleepCtx}
}

// Start plays the intro file, if any, then launches the main output and the optional
// backup output.
func (s *Supervisor) Start(ctx context.Context) error {
	if s.cfg.IntroFile != "" {
		logging.Info(s.logger, "starting intro file", "file", s.cfg.IntroFile)
		if err := s.PlayFile(ctx, s.cfg.IntroFile); err != nil {
			logging.Warn(s.logger, "intro file failed", logging.FieldError, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	main, err := s.launch(s.cfg.Main)
	if err != nil {
		return err
	}
	s.main = main
	if s.cfg.Backup != "" {
		backup, err := s.launch(s.cfg.Backup)
		if err != nil {
			logging.Warn(s.logger, "backup encoder failed to start", logging.FieldError, err)
		} else {
			s.backup = backup
		}
	}
	return nil
}

// Watch polls the main process and restarts it whenever it exits with a failure.
// It returns nil once game ends and ctx.Err() on cancellation.
func (s *Supervisor) Watch(ctx context.Context, game Terminator) error {
	for {
		if game.Ended() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.checkMain(); err != nil {
			logging.Warn(s.logger, "encoder restart failed", logging.FieldError, err)
		}
		if err := s.sleep(ctx, s.cfg.WatchInterval); err != nil {
			return err
		}
	}
}

func (s *Supervisor) checkMain() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.main == nil {
		return nil
	}
	exited, err := s.main.exited()
	if !exited || err == nil {
		return nil
	}
	logging.Info(s.logger, "encoder exited, restarting", logging.FieldError, err)
	s.metrics.RecordEncoderRestart()
	main, err := s.launch(s.cfg.Main)
	if err != nil {
		return err
	}
	s.main = main
	return nil
}

// Stop kills every running process and plays the end file, if any.
func (s *Supervisor) Stop(ctx context.Context) {
	s.mu.Lock()
	for _, p := range []*process{s.main, s.backup} {
		if p != nil && p.kill() {
			logging.Info(s.logger, "encoder process terminated")
		}
	}
	s.main, s.backup = nil, nil
	s.mu.Unlock()

	if s.cfg.EndFile != "" {
		logging.Info(s.logger, "starting end file", "file", s.cfg.EndFile)
		if err := s.PlayFile(ctx, s.cfg.EndFile); err != nil {
			logging.Warn(s.logger, "end file failed", logging.FieldError, err)
		}
	}
}

// PlayFile streams file to the main output and blocks until it finishes.
func (s *Supervisor) PlayFile(ctx context.Context, file string) error {
	cmd := exec.CommandContext(ctx, s.cfg.binary(), FileArgs(file, s.cfg.Main)...)
	cmd.Stdout = s.cfg.Log
	cmd.Stderr = s.cfg.Log
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("play %s: %w", file, err)
	}
	return nil
}

func (s *Supervisor) launch(output string) (*process, error) {
	args := s.cfg.Args(output)
	logging.Info(s.logger, "starting encoder", "command", s.cfg.binary()+" "+strings.Join(args, " "))
	cmd := exec.Command(s.cfg.binary(), args...)
	cmd.Stdout = s.cfg.Log
	cmd.Stderr = s.cfg.Log
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start encoder: %w", err)
	}
	p := &process{cmd: cmd, done: make(chan struct{})}
	go p.wait()
	return p, nil
}

type process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *process) wait() {
	p.err = p.cmd.Wait()
	close(p.done)
}

// exited reports whether the process has finished and how. A clean exit has a nil error.
func (p *process) exited() (bool, error) {
	select {
	case <-p.done:
		return true, p.err
	default:
		return false, nil
	}
}

// kill terminates a running process and reports whether it was still running.
func (p *process) kill() bool {
	if done, _ := p.exited(); done {
		return false
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return false
	}
	<-p.done
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
