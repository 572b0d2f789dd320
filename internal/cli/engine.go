package cli

import (
	"encoding/json"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	goplugin "github.com/hashicorp/go-plugin"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/stylegen/internal/source"
	"github.com/jmylchreest/stylegen/pkg/plugin"
)

func newEngineCmd(opts *rootOptions) *cobra.Command {
	var stdio, info bool

	cmd := &cobra.Command{
		Use:    "engine",
		Short:  "Serve generation requests to a panel process",
		Hidden: true,
		Long: heredoc.Doc(`
			Run the generation engine as a child process. By default the engine
			speaks go-plugin net/rpc; --stdio switches to line-delimited JSON
			envelopes on standard input and output. --info prints engine metadata
			and exits.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel).Named("engine")

			if stdio && cfg.Source == source.Stdin {
				return fmt.Errorf("standard input carries requests in --stdio mode and cannot hold the snapshot")
			}

			e, err := buildEngine(cfg, cmd.InOrStdin(), logger)
			if err != nil {
				return err
			}

			switch {
			case info:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(e.GetMetadata())
			case stdio:
				return e.ServeStdio(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			default:
				goplugin.Serve(&goplugin.ServeConfig{
					HandshakeConfig: plugin.Handshake,
					Plugins:         plugin.PluginMap(e),
					Logger:          logger,
				})
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve line-delimited JSON on stdin/stdout")
	cmd.Flags().BoolVar(&info, "info", false, "print engine metadata as JSON and exit")

	return cmd
}
