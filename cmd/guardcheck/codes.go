package main

import (
	"encoding/csv"
	"fmt"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"

	"github.com/wippyai/hook-guard/errors"
	"github.com/wippyai/hook-guard/guard"
)

func codesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List rejection log codes",
		Long:  "List every rejection log code with its name and description in CSV format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			csvWriter := csv.NewWriter(cmd.OutOrStdout())
			defer csvWriter.Flush()

			encoder := csvutil.NewEncoder(csvWriter)
			for _, info := range errors.Codes() {
				if err := encoder.Encode(info); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func apiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "List host functions a hook may import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s.%s (guard)\n", guard.ImportModule, guard.GuardFunc)
			for _, name := range guard.HostAPI() {
				fmt.Fprintf(out, "%s.%s\n", guard.ImportModule, name)
			}
			return nil
		},
	}
}
