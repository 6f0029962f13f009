package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"inkfeed/app/config"
	"inkfeed/dbtool"
)

const CliVersion = "1.0.0"

func main() {
	os.Exit(RealMain(os.Args[1:], os.Stdin, os.Stdout))
}

// RealMain dispatches a command and returns the process exit code.
func RealMain(args []string, stdin io.Reader, stdout io.Writer) int {
	if len(args) < 1 {
		printHelp(stdout)
		return 1
	}

	cmd := strings.ToLower(args[0])
	switch cmd {
	case "help":
		printHelp(stdout)
	case "version":
		fmt.Fprintf(stdout, "inkfeed version %s\n", CliVersion)
	case "serve":
		return serveCommand(stdout)
	case "db":
		return dbCommand(args[1:], stdin, stdout)
	default:
		fmt.Fprintf(stdout, "Unknown command: %s\n\n", args[0])
		printHelp(stdout)
		return 1
	}
	return 0
}

func printHelp(w io.Writer) {
	helpText := `Usage: inkfeed <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve                          Run the blog API (REST and GraphQL).
  db <command>                   Manage the database (init, clean, backup, restore, stats).

Configuration is read from the environment and from .env outside production.
`
	fmt.Fprintln(w, helpText)
}

func serveCommand(stdout io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	logger := cfg.NewLogger(stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return 1
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

func dbCommand(args []string, stdin io.Reader, stdout io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	tool := dbtool.New(cfg.DatabasePath, cfg.BackupDir, stdin, stdout)
	if err := tool.HandleCommand(args); err != nil {
		if !errors.Is(err, dbtool.ErrUsage) {
			fmt.Fprintf(stdout, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
