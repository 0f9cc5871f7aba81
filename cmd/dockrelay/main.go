package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dockrelay %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	// Stdout belongs to the protocol on the stdio transport
	logger, closeLog, err := SetupLogger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log setup error: %v\n", err)
		return ExitConfigError
	}
	defer closeLog()

	logger.Info("starting dockrelay",
		"version", Version,
		"config", *configPath,
		"transport", cfg.Server.Transport,
	)

	server, err := NewServer(cfg, logger)
	if err != nil {
		var sErr *ServerError
		if errors.As(err, &sErr) {
			logger.Error("failed to create server",
				"error", sErr.Err,
				"operation", sErr.Op,
			)
			return sErr.ExitCode
		}
		logger.Error("failed to create server", "error", err)
		return ExitConfigError
	}

	if err := server.Start(context.Background()); err != nil {
		var sErr *ServerError
		if errors.As(err, &sErr) {
			logger.Error("server error",
				"error", sErr.Err,
				"operation", sErr.Op,
			)
			return sErr.ExitCode
		}
		logger.Error("server error", "error", err)
		return ExitTransportError
	}

	return ExitSuccess
}
