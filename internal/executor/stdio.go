package executor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/stylegen/internal/protocol"
)

// maxMessageSize bounds a single response line.
const maxMessageSize = 16 << 20

// Stdio talks to an engine over line-delimited JSON envelopes. Requests may be
// issued concurrently: each gets an id, and a single reader goroutine routes
// responses to their waiters by that id.
type Stdio struct {
	w      io.WriteCloser
	logger hclog.Logger
	cmd    *exec.Cmd

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan protocol.Response
	closed  bool

	done    chan struct{}
	readErr error
}

// StartStdio spawns "path engine --stdio args..." and connects to it.
func StartStdio(ctx context.Context, path string, args []string, logger hclog.Logger) (*Stdio, error) {
	cmd := exec.CommandContext(ctx, path, engineArgs("--stdio", args)...) // #nosec G204 - engine path is this binary or user-configured
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	s := NewStdio(stdin, stdout, logger)
	s.cmd = cmd
	return s, nil
}

// NewStdio connects to an engine already attached to w and r.
func NewStdio(w io.WriteCloser, r io.Reader, logger hclog.Logger) *Stdio {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &Stdio{
		w:       w,
		logger:  logger,
		pending: make(map[string]chan protocol.Response),
		done:    make(chan struct{}),
	}
	go s.readLoop(r)
	return s
}

// Execute sends req and waits for the response carrying its id. A request
// without an id is given one.
func (s *Stdio) Execute(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ch := make(chan protocol.Response, 1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return protocol.Response{}, ErrClosed
	}
	if _, dup := s.pending[req.ID]; dup {
		s.mu.Unlock()
		return protocol.Response{}, fmt.Errorf("request %s already pending", req.ID)
	}
	s.pending[req.ID] = ch
	s.mu.Unlock()

	if err := s.send(req); err != nil {
		s.forget(req.ID)
		return protocol.Response{}, err
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return protocol.Response{}, ErrClosed
		}
		return resp, nil
	case <-ctx.Done():
		s.forget(req.ID)
		return protocol.Response{}, ctx.Err()
	}
}

func (s *Stdio) send(req protocol.Request) error {
	data, err := protocol.EncodeRequest(req)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func (s *Stdio) forget(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

func (s *Stdio) readLoop(r io.Reader) {
	defer close(s.done)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for scanner.Scan() {
		resp, err := protocol.DecodeResponse(scanner.Bytes())
		if err != nil {
			s.logger.Warn("dropping malformed response", "error", err)
			continue
		}

		s.mu.Lock()
		ch, ok := s.pending[resp.ID]
		delete(s.pending, resp.ID)
		s.mu.Unlock()

		if !ok {
			s.logger.Debug("dropping response with no waiter", "id", resp.ID)
			continue
		}
		ch <- resp
	}

	s.mu.Lock()
	s.readErr = scanner.Err()
	s.closed = true
	for id, ch := range s.pending {
		close(ch)
		delete(s.pending, id)
	}
	s.mu.Unlock()
}

// Close ends the request stream, waits for the engine to finish answering and
// reaps the child process if there is one.
func (s *Stdio) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.writeMu.Lock()
	werr := s.w.Close()
	s.writeMu.Unlock()

	<-s.done

	if s.cmd != nil {
		if err := s.cmd.Wait(); err != nil {
			return fmt.Errorf("engine exited: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return fmt.Errorf("failed to read responses: %w", s.readErr)
	}
	return werr
}
