// Package cli provides the command-line interface for stylegen.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/stylegen/internal/config"
	"github.com/jmylchreest/stylegen/internal/version"
)

// rootOptions are the flags every command shares that are not part of Config.
type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the stylegen command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "stylegen",
		Short: "Generate stylesheet code from design-tool styles",
		Long: heredoc.Doc(`
			Stylegen turns the colour fills and text styles of a design document into
			stylesheet code for SCSS, LESS, Stylus or plain CSS.

			Styles are read from a snapshot: a JSON document exported by the design
			tool, either a local file (optionally .gz or .xz), an https URL, or - for
			standard input. Identifier naming and colour notation are configurable.

			Settings are layered: built-in defaults, then the config file
			($XDG_CONFIG_HOME/stylegen/config.yaml), then STYLEGEN_* environment
			variables, then flags.
		`),
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stylegen/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	config.RegisterFlags(rootCmd.PersistentFlags(), config.Default())

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newActionCmd(opts, actionGenerate),
		newActionCmd(opts, actionCopy),
		newActionCmd(opts, actionDownload),
		newActionCmd(opts, actionClean),
		newWatchCmd(opts),
		newFormatsCmd(),
		newVersionCmd(),
		newEngineCmd(opts),
	)

	return rootCmd
}

// Execute runs the command tree and reports any error on stderr.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// loadConfig layers the config file, environment and changed flags.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to w, which is always stderr for real runs so stdout stays
// free for generated code and the engine transports.
func newLogger(w io.Writer, level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "stylegen",
		Output: w,
		Level:  hclog.LevelFromString(level),
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, protocol version and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
