package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/jmylchreest/stylegen/internal/protocol"
)

// maxMessageSize bounds a single line-delimited envelope.
const maxMessageSize = 16 << 20

// ServeStdio answers line-delimited request envelopes read from r, writing one
// response envelope per line to w in arrival order. It returns when r is
// exhausted or ctx is cancelled. If r is an io.Closer it is closed on
// cancellation so a blocked read returns; otherwise cancellation is noticed
// once the next line arrives.
func (e *Engine) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	if c, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() {
			if err := c.Close(); err != nil {
				e.logger.Debug("failed to close request stream", "error", err)
			}
		})
		defer stop()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	out := bufio.NewWriter(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp protocol.Response
		req, err := protocol.DecodeRequest(line)
		if err != nil {
			e.logger.Error("malformed request", "error", err)
			resp = protocol.ErrorResponse(protocol.Request{}, err)
		} else {
			resp = e.Serve(ctx, req)
		}

		data, err := protocol.EncodeResponse(resp)
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}
