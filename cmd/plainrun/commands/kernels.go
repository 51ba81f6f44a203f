package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/plain/internal/backend/plain"
)

func newKernelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "List the registered layer kernels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tID\tIN-PLACE")
			for _, k := range plain.NewRegistry().Kernels() {
				fmt.Fprintf(w, "%s\t%s\t%t\n", k.Name(), k.ID(), k.InPlaceBackprop())
			}
			return w.Flush()
		},
	}
}
