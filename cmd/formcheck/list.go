package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		properties bool
		only       []string
	)

	cmd := &cobra.Command{
		Use:   "list [scenario files...]",
		Short: "Print scenario names without running them",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := loadScenarios(args, properties, only)
			if err != nil {
				return fatal(err)
			}
			for _, s := range scenarios {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d setup, %d assertions\n", s.Name, len(s.Setup), len(s.Assertions))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&properties, "properties", false, "Include the generated property scenarios")
	cmd.Flags().StringSliceVar(&only, "only", nil, "List only scenarios whose name contains one of these")
	return cmd
}
