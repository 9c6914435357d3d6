package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/sqlitedump"
)

func newDumpCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump <sqlite-db>",
		Short: "Convert a SQLite project table into PostgreSQL INSERT statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sqlitedump.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			var w io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			n, err := sqlitedump.Dump(cmd.Context(), db, w)
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(os.Stderr, "wrote %d statements to %s\n", n, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write statements to this file instead of stdout")
	return cmd
}
