package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/internal/source"
	"github.com/jmylchreest/stylegen/internal/watch"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		download bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [snapshot]",
		Short: "Regenerate whenever the snapshot changes",
		Long: heredoc.Doc(`
			Generate once, then again every time the snapshot file is saved. Each
			change sends a new request; a change that arrives while the previous
			request is outstanding supersedes it.

			Examples:
			  # Reprint SCSS on every export
			  stylegen watch styles.json

			  # Keep src/styles/styles.css up to date
			  stylegen watch styles.json --download -f css -o src/styles
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts, args)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := watchable(s.cfg.Source); err != nil {
				return err
			}

			command := protocol.CommandGenerateCode
			if download {
				command = protocol.CommandDownload
			}

			w, err := watch.New(s.cfg.Source, watch.Options{
				Debounce: debounce,
				Logger:   s.logger.Named("watch"),
			})
			if err != nil {
				return err
			}

			if err := s.panel.Do(cmd.Context(), command); err != nil {
				s.logger.Warn("generation failed", "error", err)
			}
			return w.Run(cmd.Context(), func(ctx context.Context) {
				if err := s.panel.Do(ctx, command); err != nil {
					s.logger.Warn("generation failed", "error", err)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&download, "download", false, "save styles.<ext> on every change instead of printing")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before regenerating")

	return cmd
}

// watchable reports whether location is a local file that can be watched.
func watchable(location string) error {
	switch {
	case location == "":
		return fmt.Errorf("watch needs a snapshot file")
	case location == source.Stdin:
		return fmt.Errorf("cannot watch standard input")
	case strings.Contains(location, "://"):
		return fmt.Errorf("cannot watch remote snapshot %s", location)
	}
	return nil
}
