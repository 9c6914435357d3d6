package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/batch"
)

func newBatchCmd() *cobra.Command {
	var (
		server  string
		perSec  float64
		logFile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Create projects from a name|description list or a YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := batch.NewLogger(logFile, verbose)
			defer func() { _ = log.Sync() }()

			entries, err := batch.LoadFile(args[0], log)
			if err != nil {
				return err
			}
			log.Info("loaded projects", zap.String("file", args[0]), zap.Int("count", len(entries)))

			sum, err := batch.NewRunner(server, nil, perSec, log).Run(cmd.Context(), entries)
			batch.PrintSummary(os.Stdout, sum)
			return err
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "API base URL")
	cmd.Flags().Float64Var(&perSec, "rate", 0, "maximum requests per second (0 = unlimited)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "also write JSON logs to this rotated file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}
