// Package capture collects a subprocess's combined stdout/stderr for the
// duration of one run. A Capture is an explicit handle owned by the active
// test-case run, installed and uninstalled around exactly one execution.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sync"
)

// ErrAlreadyInstalled indicates Install was called while the capture is
// still attached to a command.
var ErrAlreadyInstalled = errors.New("capture already installed")

// ErrNotInstalled indicates Uninstall was called for a command the capture
// is not attached to.
var ErrNotInstalled = errors.New("capture not installed on command")

// Capture buffers everything a subprocess writes to its output and error
// streams, interleaved in emission order. It is reusable across sequential
// runs but never concurrently on two commands at once.
type Capture struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	installed *exec.Cmd
}

// New creates an empty Capture.
func New() *Capture {
	return &Capture{}
}

// Install attaches the capture as the command's stdout and stderr and
// clears any previously buffered text. The command must not have its
// streams assigned already, and the capture must not be attached elsewhere.
func (c *Capture) Install(cmd *exec.Cmd) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.installed != nil {
		return ErrAlreadyInstalled
	}
	if cmd.Stdout != nil || cmd.Stderr != nil {
		return fmt.Errorf("command already has output streams assigned")
	}

	c.buf.Reset()
	// Both streams share the writer so lines interleave in emission order.
	cmd.Stdout = (*captureWriter)(c)
	cmd.Stderr = (*captureWriter)(c)
	c.installed = cmd
	return nil
}

// Uninstall detaches the capture from the command, leaving the buffer
// intact for reading.
func (c *Capture) Uninstall(cmd *exec.Cmd) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.installed != cmd {
		return ErrNotInstalled
	}
	cmd.Stdout = nil
	cmd.Stderr = nil
	c.installed = nil
	return nil
}

// Read returns the buffered text as a single string with the subprocess's
// original line terminators preserved.
func (c *Capture) Read() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// captureWriter adapts a Capture to io.Writer under the capture's lock.
type captureWriter Capture

func (w *captureWriter) Write(p []byte) (int, error) {
	c := (*Capture)(w)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}
