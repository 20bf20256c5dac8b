package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruslano69/recordkit/pkg/config"
	_ "github.com/ruslano69/recordkit/pkg/driver/mssql"
	_ "github.com/ruslano69/recordkit/pkg/driver/mysql"
	_ "github.com/ruslano69/recordkit/pkg/driver/postgres"
	_ "github.com/ruslano69/recordkit/pkg/driver/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Parse flags
	flags := ParseFlags()

	// Handle version
	if *flags.Version {
		PrintVersion()
		os.Exit(0)
	}

	// Handle help
	if *flags.Help {
		PrintHelp()
		os.Exit(0)
	}

	// Handle config creation
	if *flags.CreateConfig != "" {
		createConfigTemplate(*flags.CreateConfig)
		return
	}

	command, table := flags.command()
	if command == "" && !*flags.Serve {
		PrintHelp()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*flags.Config)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	logger := cfg.Log.NewLogger(os.Stderr)

	app, err := NewApp(cfg, logger, os.Stdout)
	if err != nil {
		fatal("Failed to initialize: %v", err)
	}

	var cmdErr error
	if *flags.Serve {
		cmdErr = app.Serve(ctx, *flags.Addr)
	} else {
		cmdErr = app.Run(ctx, command, table, flags.options())
	}

	if *flags.QueryLog {
		app.PrintQueryLog()
	}
	if err := app.Close(); err != nil {
		logger.Warn().Err(err).Msg("close failed")
	}

	// Handle errors
	if cmdErr != nil {
		fatal("Command failed: %v", cmdErr)
	}
}

// createConfigTemplate creates a sample configuration file
func createConfigTemplate(driverName string) {
	cfg, err := CreateSampleConfig(driverName)
	if err != nil {
		fatal("Failed to create config: %v", err)
	}

	if err := SaveConfig("recordkit.yaml", cfg); err != nil {
		fatal("Failed to save config: %v", err)
	}

	fmt.Printf("Created sample %s config: recordkit.yaml\n", driverName)
	fmt.Println("Edit the file with your database credentials and run:")
	fmt.Println("  recordctl --select <table> --config recordkit.yaml")
}

// fatal prints error and exits
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
