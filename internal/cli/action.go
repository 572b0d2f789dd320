package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/stylegen/internal/config"
	"github.com/jmylchreest/stylegen/internal/engine"
	"github.com/jmylchreest/stylegen/internal/executor"
	"github.com/jmylchreest/stylegen/internal/panel"
	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/internal/source"
)

// action describes one panel command exposed as a subcommand.
type action struct {
	use     string
	command protocol.CommandType
	short   string
	long    string
}

var (
	actionGenerate = action{
		use:     "generate [snapshot]",
		command: protocol.CommandGenerateCode,
		short:   "Print generated stylesheet code",
		long: heredoc.Doc(`
			Generate stylesheet code from a snapshot and print it. Output is syntax
			highlighted when standard output is a terminal.

			Examples:
			  # SCSS variables with kebab-case names and rgba() colours
			  stylegen generate styles.json

			  # Plain CSS custom properties with HEX colours
			  stylegen generate styles.json -f css -c hex

			  # camelCase LESS from a compressed export
			  stylegen generate export.json.xz -f less -n camel
		`),
	}
	actionCopy = action{
		use:     "copy [snapshot]",
		command: protocol.CommandCopy,
		short:   "Copy generated stylesheet code to the clipboard",
	}
	actionDownload = action{
		use:     "download [snapshot]",
		command: protocol.CommandDownload,
		short:   "Save generated stylesheet code to styles.<ext>",
		long: heredoc.Doc(`
			Generate stylesheet code and save it to styles.<ext> in the output
			directory, where ext is scss, less, stylus or css.

			Examples:
			  stylegen download styles.json -f stylus -o src/styles
		`),
	}
	actionClean = action{
		use:     "clean",
		command: protocol.CommandClean,
		short:   "Clear the displayed code",
	}
)

func newActionCmd(opts *rootOptions, a action) *cobra.Command {
	args := cobra.MaximumNArgs(1)
	if a.command == protocol.CommandClean {
		args = cobra.NoArgs
	}
	return &cobra.Command{
		Use:   a.use,
		Short: a.short,
		Long:  a.long,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts, args)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.panel.Do(cmd.Context(), a.command)
		},
	}
}

// session is one panel connected to one engine.
type session struct {
	cfg    *config.Config
	logger hclog.Logger
	exec   executor.Executor
	panel  *panel.Panel
}

func newSession(cmd *cobra.Command, opts *rootOptions, args []string) (*session, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Source = args[0]
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	exec, err := newExecutor(cmd, cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	panelOpts := []panel.Option{
		panel.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		panel.WithOutputDir(cfg.OutputDir),
		panel.WithLogger(logger.Named("panel")),
	}
	if isTerminal(cmd.OutOrStdout()) {
		panelOpts = append(panelOpts, panel.WithHighlight(cfg.Theme))
	}

	sel := panel.Selections{Format: cfg.Format, ColorMode: cfg.ColorMode, NameFormat: cfg.NameFormat}
	return &session{
		cfg:    cfg,
		logger: logger,
		exec:   exec,
		panel:  panel.New(exec, sel, panelOpts...),
	}, nil
}

// Close shuts down the engine connection.
func (s *session) Close() error {
	if err := s.exec.Close(); err != nil {
		s.logger.Warn("failed to close engine", "error", err)
		return err
	}
	return nil
}

// buildEngine assembles an engine from cfg. Without a configured source the
// engine still answers CLEAN.
func buildEngine(cfg *config.Config, stdin io.Reader, logger hclog.Logger) (*engine.Engine, error) {
	b := engine.NewBuilder().
		WithLogger(logger).
		WithHexAlpha(cfg.HexAlpha).
		WithHeader(cfg.Header)

	if cfg.Source != "" {
		srcOpts := cfg.SourceOptions()
		srcOpts.Stdin = stdin
		src, err := source.Open(cfg.Source, srcOpts)
		if err != nil {
			return nil, err
		}
		b.WithSource(src)
	}
	return b.Build(), nil
}

func newExecutor(cmd *cobra.Command, cfg *config.Config, opts *rootOptions, logger hclog.Logger) (executor.Executor, error) {
	if cfg.Transport == executor.TransportInProcess {
		e, err := buildEngine(cfg, cmd.InOrStdin(), logger.Named("engine"))
		if err != nil {
			return nil, err
		}
		return executor.NewInProcess(e), nil
	}

	if cfg.Source == source.Stdin {
		return nil, fmt.Errorf("reading the snapshot from stdin needs the %s transport", executor.TransportInProcess)
	}
	return executor.New(cmd.Context(), executor.Config{
		Transport: cfg.Transport,
		Args:      engineFlags(cfg, opts),
		Logger:    logger.Named("executor"),
	})
}

// engineFlags forwards the settings the engine process needs.
func engineFlags(cfg *config.Config, opts *rootOptions) []string {
	args := []string{
		"--" + config.FlagLogLevel, cfg.LogLevel,
		"--" + config.FlagChannelScale, string(cfg.ChannelScale),
		"--" + config.FlagTimeout, cfg.Timeout.String(),
		"--" + config.FlagHexAlpha + "=" + fmt.Sprint(cfg.HexAlpha),
	}
	if opts.configPath != "" {
		args = append(args, "--config", opts.configPath)
	}
	if cfg.Source != "" {
		args = append(args, "--"+config.FlagSource, cfg.Source)
	}
	if cfg.Header != "" {
		args = append(args, "--"+config.FlagHeader, cfg.Header)
	}
	return args
}

// describeTokens lists the accepted values of an option for help output.
func describeTokens[T ~string](values []T) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}
