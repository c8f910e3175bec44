package pdml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxStderrBytes = 4096

// Converter pipes raw pcap bytes through an external decoder script and parses its output.
//
// The script is called as `<script> <page>`, reads the pcap on stdin and writes pdml on stdout.
// Input is fed and output is drained by two goroutines: the decoder starts writing before it
// has read all of its input, so writing everything first would block once a pipe buffer fills up.
type Converter struct {
	script string
}

func NewConverter(script string) *Converter {
	return &Converter{script: script}
}

func (c *Converter) Script() string {
	return c.script
}

// Convert runs the decoder on raw and returns the decoded tree.
func (c *Converter) Convert(ctx context.Context, page string, raw io.Reader) (*Node, error) {
	logger := zap.S().Named("pdml_converter")

	cmd := exec.CommandContext(ctx, c.script, page)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, NewExecutionError("%w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, NewExecutionError("%w", err)
	}
	stderr := &limitedBuffer{limit: maxStderrBytes}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, NewExecutionError("%w", err)
	}

	var (
		root     *Node
		parseErr error
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		_, err := io.Copy(stdin, raw)
		closeErr := stdin.Close()
		if err != nil {
			return fmt.Errorf("failed to write pcap to %s: %w", c.script, err)
		}
		return closeErr
	})
	g.Go(func() error {
		root, parseErr = Decode(stdout)
		// keep draining so the script never blocks on a full pipe
		if _, err := io.Copy(io.Discard, stdout); err != nil {
			return fmt.Errorf("failed to read pdml from %s: %w", c.script, err)
		}
		return nil
	})

	ioErr := g.Wait()
	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		return nil, NewExecutionError("%s interrupted: %w", c.script, ctx.Err())
	case waitErr != nil:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			logger.Errorw("pdml script failed", "script", c.script, "page", page, "exit_code", exitErr.ExitCode(), "stderr", stderr.String())
			return nil, NewExecutionError("%s exited with %s: %s", c.script, exitErr, strings.TrimSpace(stderr.String()))
		}
		return nil, NewExecutionError("%w", waitErr)
	case ioErr != nil:
		return nil, NewExecutionError("%w", ioErr)
	case parseErr != nil:
		return nil, parseErr
	}

	logger.Debugw("pcap converted", "script", c.script, "page", page)
	return root, nil
}

// limitedBuffer keeps the first limit bytes written to it and discards the rest.
type limitedBuffer struct {
	lock  sync.Mutex
	buf   []byte
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if room := b.limit - len(b.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		b.buf = append(b.buf, p[:room]...)
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return string(b.buf)
}
