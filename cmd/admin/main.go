package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/yigit/parishscheduler/internal/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "admin",
		Short:        "Parish Scheduler administration",
		Long:         `Maintenance commands for the parish scheduler: schema migrations and the bootstrap director account.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createDirectorCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
