package cluster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	central "globe/internal/central/config"
)

// localRuntime runs workers as child processes of central.
type localRuntime struct{}

func (localRuntime) start(ctx context.Context, cfg *central.Config, w central.Worker) (*process, error) {
	if w.Executable == "" {
		return nil, fmt.Errorf("executable must be set for local runtime (worker %s)", w.ID)
	}
	env, err := envList(cfg, w)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, w.Executable, w.Args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	proc := newProcess(w)
	proc.setActiveStatus("running")
	go func() {
		if err := cmd.Wait(); err != nil {
			proc.setFinalStatus("stopped", err)
			return
		}
		proc.setFinalStatus("exited", nil)
	}()

	proc.stopFn = func(stopCtx context.Context) error {
		if cmd.Process == nil {
			return nil
		}
		select {
		case <-proc.doneCh:
			return nil
		default:
		}
		_ = cmd.Process.Signal(syscall.SIGINT)
		select {
		case <-proc.doneCh:
			return nil
		case <-time.After(5 * time.Second):
		case <-stopCtx.Done():
		}
		return cmd.Process.Kill()
	}
	return proc, nil
}

func (localRuntime) shutdown() {}
