package main

import (
	"os"

	"fintrack/commands"
)

// @title Finance Tracker API
// @version 1.0
// @description Local API of the personal finance tracker: records, settings, images, statistics and export.
// @host 127.0.0.1:5173
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
