package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"machinery-service/internal/machinery/model"
)

func canonicalizeCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "canonicalize [NAME...]",
		Short: "Print canonical names; reads stdin line by line when no names given",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
						names = append(names, line)
					}
				}
				if err := sc.Err(); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}

			out := make([]model.CanonicalName, 0, len(names))
			for _, n := range names {
				out = append(out, model.CanonicalName{
					Raw:       n,
					Canonical: a.canon.Canonicalize(n),
					Critical:  a.canon.IsCritical(n),
				})
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			for _, c := range out {
				mark := ""
				if c.Critical {
					mark = "\tcritical"
				}
				fmt.Fprintf(w, "%s\t%s%s\n", c.Raw, c.Canonical, mark)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
