package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func subsystemsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subsystems",
		Short: "Subsystem catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List subsystem checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SUBSYSTEM\tSHEETS\tFILTER\tKEYWORDS")
			for _, d := range a.defs {
				filter, kw := d.FilterColumn, strings.Join(d.Keywords, ", ")
				if d.AllJobs {
					filter, kw = "-", "(all jobs)"
				}
				if d.IgnoreCase {
					kw += " (ignore case)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.DisplayLabel(), strings.Join(d.Sheets, " | "), filter, kw)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(list)
	return cmd
}
