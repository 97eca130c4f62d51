// Package launch starts the external visualizer on an exported save.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/voxelsplace/voxbin/voxbin"
)

// Placeholder in Args that is replaced by the artifact id.
const Placeholder = "{id}"

// ErrNoProgram is returned by Launch when no program is configured.
var ErrNoProgram = errors.New("launch: no program configured")

// Command launches Program with Args in Dir, handing it the artifact id.
// It implements voxbin.Launcher.
type Command struct {
	Dir     string
	Program string
	Args    []string
	Env     []string
	Log     zerolog.Logger
}

// NewCommand creates a launcher for program run from dir.
func NewCommand(dir, program string, args []string, log zerolog.Logger) *Command {
	return &Command{Dir: dir, Program: program, Args: args, Log: log}
}

// Argv returns the command line for id. The id is appended when no argument holds the placeholder.
func (c *Command) Argv(id string) []string {
	argv := []string{c.Program}
	found := false
	for _, a := range c.Args {
		if strings.Contains(a, Placeholder) {
			found = true
			a = strings.ReplaceAll(a, Placeholder, id)
		}
		argv = append(argv, a)
	}
	if !found {
		argv = append(argv, id)
	}
	return argv
}

// Launch starts the consumer and returns once it is running. Output is discarded
// and the process is reaped in the background; its exit status is only logged.
// ctx only guards the start: cancelling it afterwards leaves the consumer running.
func (c *Command) Launch(ctx context.Context, id string) (voxbin.LaunchResult, error) {
	if c.Program == "" {
		return voxbin.LaunchResult{}, ErrNoProgram
	}
	if err := ctx.Err(); err != nil {
		return voxbin.LaunchResult{}, err
	}
	argv := c.Argv(id)
	res := voxbin.LaunchResult{Command: strings.Join(argv, " ")}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("start %s: %w", argv[0], err)
	}
	res.PID = cmd.Process.Pid
	c.Log.Debug().Str("dir", c.Dir).Str("command", res.Command).Int("pid", res.PID).Msg("consumer started")

	go func() {
		if err := cmd.Wait(); err != nil {
			c.Log.Warn().Err(err).Int("pid", res.PID).Msg("consumer exited with error")
			return
		}
		c.Log.Debug().Int("pid", res.PID).Msg("consumer exited")
	}()
	return res, nil
}

var _ voxbin.Launcher = (*Command)(nil)
