package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/LiXizhi/nplmerge/codemodel"
)

func newOutlineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "outline FILE",
		Short: "List function declarations with their name spans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := afero.ReadFile(a.fs, args[0])
			if err != nil {
				return err
			}
			elems, err := codemodel.NewParser(codemodel.WithLogger(a.logger)).Parse(cmd.Context(), src)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range elems {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.NameSpan, e.Kind, e.QualifiedName)
			}
			return w.Flush()
		},
	}
}
