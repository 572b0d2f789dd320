package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/stylegen/internal/generator"
	"github.com/jmylchreest/stylegen/internal/protocol"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats, colour modes and name formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			table := NewTable([]string{"FORMAT", "FILE", "DESCRIPTION"})
			table.SetColumnMaxWidth(2, 50)
			for _, d := range generator.DefaultRegistry().All() {
				table.AddRow([]string{string(d.Format), d.Filename(), d.Description})
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, table.Render())
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Colour modes: %s\n", describeTokens(protocol.ColorModes()))
			fmt.Fprintf(out, "Name formats: %s\n", describeTokens(protocol.NameFormats()))
		},
	}
}
