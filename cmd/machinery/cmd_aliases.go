package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func aliasesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Alias table tools",
	}

	var strict bool
	lint := &cobra.Command{
		Use:   "lint",
		Short: "Report collisions, duplicates and unstable canonical names in the alias table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			t := a.tables
			fmt.Fprintf(w, "aliases:   %d\n", t.Aliases.Len())
			fmt.Fprintf(w, "canonical: %d\n", t.Aliases.CanonicalCount())
			fmt.Fprintf(w, "critical:  %s\n", strings.Join(t.Critical, ", "))
			if len(t.Issues) == 0 {
				fmt.Fprintln(w, "no issues")
				return nil
			}
			fmt.Fprintf(w, "issues:    %d\n", len(t.Issues))
			for _, is := range t.Issues {
				fmt.Fprintf(w, "  %s\n", is)
			}
			if strict {
				return fmt.Errorf("alias table has %d issues", len(t.Issues))
			}
			return nil
		},
	}
	lint.Flags().BoolVar(&strict, "strict", false, "exit with error when issues are found")

	cmd.AddCommand(lint)
	return cmd
}
