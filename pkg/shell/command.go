package shell

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

var ErrEmptyCommand = errors.New("shell: empty command")

// Command is a process whose stdout is read as a stream
type Command struct {
	*exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
}

func NewCommand(ctx context.Context, s string) (*Command, error) {
	args := QuoteSplit(s)
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.SysProcAttr = procAttr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}

	return &Command{Cmd: cmd, stdout: stdout, cancel: cancel}, nil
}

func (c *Command) Read(p []byte) (int, error) {
	return c.stdout.Read(p)
}

// Wait for the exit after stdout was read to the end
func (c *Command) Wait() error {
	defer c.cancel()
	return c.Cmd.Wait()
}

// Close kills a process that is still running
func (c *Command) Close() error {
	c.cancel()
	_ = c.Cmd.Wait()
	return nil
}
