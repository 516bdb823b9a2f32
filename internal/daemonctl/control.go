package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"wordglow/internal/config"
)

// ErrDaemonNotRunning indicates no process holds the daemon lock.
var ErrDaemonNotRunning = errors.New("daemon not running")

const pollInterval = 200 * time.Millisecond

// Status describes the daemon as seen from outside its process.
type Status struct {
	Running  bool
	PID      int
	LockPath string
	PIDPath  string
	LogPath  string
}

// StopResult captures daemon stop outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// Probe reports whether a daemon currently holds the lock for cfg. The pid
// is read from the pid file and is zero when that file is missing.
func Probe(cfg *config.Config) (Status, error) {
	status := Status{
		LockPath: cfg.LockPath(),
		PIDPath:  cfg.PIDPath(),
		LogPath:  cfg.LogPath(),
	}
	held, err := lockHeld(status.LockPath)
	if err != nil {
		return status, err
	}
	if !held {
		return status, nil
	}
	status.Running = true
	pid, err := readPID(status.PIDPath)
	if err != nil {
		return status, err
	}
	status.PID = pid
	return status, nil
}

// Stop sends SIGTERM to the daemon and waits up to grace for it to release
// its lock. A daemon still holding the lock after grace is killed.
func Stop(ctx context.Context, cfg *config.Config, grace time.Duration) (StopResult, error) {
	status, err := Probe(cfg)
	if err != nil {
		return StopResult{}, err
	}
	if !status.Running {
		return StopResult{}, ErrDaemonNotRunning
	}
	if status.PID <= 0 {
		return StopResult{}, fmt.Errorf("unable to determine daemon pid (pid file: %s)", status.PIDPath)
	}
	if status.PID == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", status.PID)
	}

	result := StopResult{PID: status.PID}
	proc, err := os.FindProcess(status.PID)
	if err != nil {
		return result, fmt.Errorf("locate daemon process %d: %w", status.PID, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return result, fmt.Errorf("signal daemon process %d: %w", status.PID, err)
	}
	if released, err := waitForRelease(ctx, status.LockPath, grace); err != nil || released {
		return result, err
	}

	if err := proc.Kill(); err != nil {
		return result, fmt.Errorf("kill daemon process %d: %w", status.PID, err)
	}
	result.ForcedKill = true
	if err := os.Remove(status.PIDPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("remove pid file %q: %w", status.PIDPath, err)
	}
	return result, nil
}

func lockHeld(path string) (bool, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe daemon lock: %w", err)
	}
	if ok {
		_ = lock.Unlock()
		return false, nil
	}
	return true, nil
}

func waitForRelease(ctx context.Context, lockPath string, grace time.Duration) (bool, error) {
	deadline := time.Now().Add(grace)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		held, err := lockHeld(lockPath)
		if err != nil {
			return false, err
		}
		if !held {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read daemon pid file %q: %w", path, err)
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(raw)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("daemon pid file %q holds %q", path, raw)
	}
	return pid, nil
}
