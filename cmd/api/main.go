package main

import (
	"os"

	"github.com/yigit/parishscheduler/internal/pkg/logger"
	"github.com/yigit/parishscheduler/internal/server"
)

// @title Parish Scheduler API
// @version 1.0
// @description API for parish volunteer scheduling: members, ministries, schedules and confirmations

// @host localhost:3001
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
