// Package main is the entry point for the climonitor launcher.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/climonitor/climonitor/internal/buildinfo"
	"github.com/climonitor/climonitor/internal/clierr"
	"github.com/climonitor/climonitor/internal/config"
	"github.com/climonitor/climonitor/internal/launcher"
	"github.com/climonitor/climonitor/internal/obslog"
	"github.com/climonitor/climonitor/internal/transport"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	exitCode := clierr.ExitSuccess

	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date

	rootCmd := newRootCmd(&exitCode)

	if err := rootCmd.Execute(); err != nil {
		return handleError(err)
	}

	return exitCode
}

func handleError(err error) int {
	var cliErr *clierr.CLIError
	if clierr.As(err, &cliErr) {
		fmt.Fprintf(os.Stderr, "climonitor: %s\n", cliErr.Message)

		if cliErr.Hint != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", cliErr.Hint)
		}

		return cliErr.Code
	}

	errStr := err.Error()

	if strings.HasPrefix(errStr, "unknown flag") || strings.HasPrefix(errStr, "unknown shorthand flag") {
		fmt.Fprintf(os.Stderr, "climonitor: %s\n", errStr)
		return clierr.ExitUsage
	}

	fmt.Fprintf(os.Stderr, "climonitor: %s\n", errStr)

	return clierr.ExitGeneral
}

func newRootCmd(exitCode *int) *cobra.Command {
	var (
		verbose     bool
		logFile     string
		configPath  string
		connectAddr string
	)

	rootCmd := &cobra.Command{
		Use:   "climonitor TOOL [TOOL_ARGS...]",
		Short: "Wrap an interactive AI CLI in a monitored pseudo-terminal",
		Long: `climonitor wraps an interactive command-line AI assistant (claude, gemini)
in a pseudo-terminal, reconstructs its rendered screen from the raw byte
stream, classifies its runtime state, and reports state transitions to
a monitoring aggregator while the wrapped tool runs exactly as if it
had been invoked directly.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := args[0]
			toolArgs := args[1:]

			cfg, err := config.LoadFrom(configPath)
			if err != nil {
				return clierr.ConfigInvalid(configPath, err)
			}

			if verbose {
				cfg.Set("logging.verbose", true)
			}

			if logFile != "" {
				cfg.Set("logging.log_file", logFile)
			}

			if connectAddr != "" {
				if cfg.ConnectionType() == string(transport.BackendNetwork) {
					cfg.Set("connection.bind_address", connectAddr)
				} else {
					cfg.Set("connection.socket_path", connectAddr)
				}
			}

			logger, cleanup, err := obslog.New(obslog.Config{
				Verbose: cfg.Verbose(),
			})
			if err != nil {
				return clierr.ConfigInvalid(configPath, err)
			}

			defer func() { _ = cleanup() }()

			slog.SetDefault(logger)

			workingDir, err := os.Getwd()
			if err != nil {
				workingDir = ""
			}

			transportCfg := transport.Config{
				Backend:        transport.Backend(cfg.ConnectionType()),
				SocketPath:     cfg.SocketPath(),
				Addr:           cfg.BindAddress(),
				ConnectTimeout: transport.DefaultConnectTimeout,
				WriteTimeout:   transport.DefaultWriteTimeout,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			transcriptPath := cfg.LogFile()
			if transcriptPath != "" {
				transcriptPath = filepath.Clean(transcriptPath)
			}

			code, runErr := launcher.Run(ctx, tool, toolArgs, launcher.Options{
				WorkingDir:     workingDir,
				Transport:      transportCfg,
				TranscriptPath: transcriptPath,
				Verbose:        cfg.Verbose(),
			})
			if runErr != nil {
				return runErr
			}

			*exitCode = code

			return nil
		},
	}

	rootCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose diagnostic tracing")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Raw PTY transcript file path")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Explicit configuration file path")
	rootCmd.PersistentFlags().StringVar(&connectAddr, "connect", "", "Override the aggregator transport endpoint")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierr.New(clierr.ExitUsage, err.Error())
	})

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("climonitor %s (%s, %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
			return nil
		},
	}
}
