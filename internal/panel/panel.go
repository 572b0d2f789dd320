// Package panel is the terminal presentation side of the command protocol. It
// holds the current selections and the last response, sends one request per
// user action and renders whatever comes back.
package panel

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/stylegen/internal/executor"
	"github.com/jmylchreest/stylegen/internal/protocol"
)

// NoStylesMessage is shown when a response carries a zero count.
const NoStylesMessage = "No styles were found"

// DefaultTheme is the chroma style used for highlighting.
const DefaultTheme = "monokai"

// State is the panel side of the protocol state machine.
type State int

const (
	// Idle means no request is outstanding.
	Idle State = iota
	// AwaitingGeneration means a request was sent and its response has not arrived.
	AwaitingGeneration
)

func (s State) String() string {
	if s == AwaitingGeneration {
		return "awaiting-generation"
	}
	return "idle"
}

// Selections are the user's current generation choices.
type Selections struct {
	Format     protocol.OutputFormat
	ColorMode  protocol.ColorMode
	NameFormat protocol.NameFormat
}

// Validate checks every selection.
func (s Selections) Validate() error {
	return protocol.Request{Command: protocol.CommandGenerateCode, Format: s.Format, ColorMode: s.ColorMode, NameFormat: s.NameFormat}.Validate()
}

// Clipboard receives copied code.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Option configures a Panel.
type Option func(*Panel)

// WithOutput sets where code and messages are written.
func WithOutput(out, errOut io.Writer) Option {
	return func(p *Panel) {
		p.out = out
		p.errOut = errOut
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) Option {
	return func(p *Panel) { p.clipboard = c }
}

// WithOutputDir sets where DOWNLOAD saves files.
func WithOutputDir(dir string) Option {
	return func(p *Panel) { p.outDir = dir }
}

// WithHighlight enables syntax highlighting using the given chroma theme.
// An empty theme disables highlighting.
func WithHighlight(theme string) Option {
	return func(p *Panel) { p.theme = theme }
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(p *Panel) { p.logger = logger }
}

// Panel drives an executor on behalf of a user.
type Panel struct {
	exec       executor.Executor
	selections Selections

	out       io.Writer
	errOut    io.Writer
	clipboard Clipboard
	outDir    string
	theme     string
	logger    hclog.Logger

	state   State
	pending protocol.Request
	last    *protocol.Response
}

// New creates a panel with the given initial selections.
func New(exec executor.Executor, sel Selections, opts ...Option) *Panel {
	p := &Panel{
		exec:       exec,
		selections: sel,
		out:        os.Stdout,
		errOut:     os.Stderr,
		clipboard:  systemClipboard{},
		outDir:     ".",
		logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select replaces the current selections.
func (p *Panel) Select(sel Selections) { p.selections = sel }

// Selections returns the current selections.
func (p *Panel) Selections() Selections { return p.selections }

// State returns the protocol state.
func (p *Panel) State() State { return p.state }

// Last returns the last accepted response, or nil after CLEAN.
func (p *Panel) Last() *protocol.Response { return p.last }

// Begin builds the request for cmd from the current selections and marks it
// as the one awaited. Any earlier outstanding request is superseded: its
// response will be ignored when it arrives.
func (p *Panel) Begin(cmd protocol.CommandType) protocol.Request {
	req := protocol.Request{
		ID:         uuid.NewString(),
		Command:    cmd,
		Format:     p.selections.Format,
		ColorMode:  p.selections.ColorMode,
		NameFormat: p.selections.NameFormat,
	}
	if p.state == AwaitingGeneration {
		p.logger.Debug("superseding request", "id", p.pending.ID)
	}
	p.pending = req
	p.state = AwaitingGeneration
	return req
}

// Receive accepts resp if it answers the awaited request and renders it.
// Stale responses are dropped and reported as not accepted.
func (p *Panel) Receive(resp protocol.Response) (bool, error) {
	if p.state != AwaitingGeneration || resp.ID != p.pending.ID {
		p.logger.Debug("dropping stale response", "id", resp.ID)
		return false, nil
	}

	req := p.pending
	p.state = Idle
	p.pending = protocol.Request{}

	if err := resp.Err(); err != nil {
		p.message(errorStyle.Render("Error: ") + err.Error())
		return true, err
	}

	if resp.Command == protocol.CommandClean {
		p.last = nil
		p.message(mutedStyle.Render("Cleared"))
		return true, nil
	}

	p.last = &resp
	if resp.StyleCount() == 0 {
		fmt.Fprintln(p.out, warningStyle.Render(NoStylesMessage))
		return true, nil
	}

	switch req.Command {
	case protocol.CommandCopy:
		return true, p.copy(resp)
	case protocol.CommandDownload:
		return true, p.download(req, resp)
	default:
		return true, p.show(req, resp)
	}
}

// Do performs one user action: it sends the request for cmd and renders the
// response.
func (p *Panel) Do(ctx context.Context, cmd protocol.CommandType) error {
	req := p.Begin(cmd)
	resp, err := p.exec.Execute(ctx, req)
	if err != nil {
		p.state = Idle
		p.message(errorStyle.Render("Error: ") + err.Error())
		return err
	}
	_, err = p.Receive(resp)
	return err
}

func (p *Panel) show(req protocol.Request, resp protocol.Response) error {
	code := resp.Code
	if p.theme != "" {
		highlighted, err := Highlight(code, filename(req.Format), p.theme)
		if err != nil {
			p.logger.Warn("highlighting failed", "error", err)
		} else {
			code = highlighted
		}
	}
	_, err := io.WriteString(p.out, code)
	return err
}

func (p *Panel) copy(resp protocol.Response) error {
	if err := p.clipboard.WriteAll(resp.Code); err != nil {
		p.message(errorStyle.Render("Error: ") + "failed to copy to clipboard: " + err.Error())
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	p.message(successStyle.Render(fmt.Sprintf("Copied %s to clipboard", plural(resp.StyleCount()))))
	return nil
}

func (p *Panel) download(req protocol.Request, resp protocol.Response) error {
	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(p.outDir, filename(req.Format))
	if err := os.WriteFile(path, []byte(resp.Code), 0o644); err != nil { // #nosec G306 - stylesheets are meant to be readable
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	p.message(successStyle.Render(fmt.Sprintf("Saved %s", path)) +
		mutedStyle.Render(fmt.Sprintf(" (%s, %s)", plural(resp.StyleCount()), humanize.Bytes(uint64(len(resp.Code))))))
	return nil
}

func (p *Panel) message(s string) {
	fmt.Fprintln(p.errOut, s)
}

// filename is the download name for format, e.g. "styles.scss".
func filename(format protocol.OutputFormat) string {
	return "styles." + format.Extension()
}

func plural(n int) string {
	if n == 1 {
		return "1 style"
	}
	return fmt.Sprintf("%d styles", n)
}

// Describe renders the selections for status lines.
func (s Selections) Describe() string {
	return strings.Join([]string{string(s.Format), string(s.ColorMode), string(s.NameFormat)}, " / ")
}
