// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naka-gawa/pr-sheet-sync/internal/config"
	"github.com/naka-gawa/pr-sheet-sync/internal/gateway"
)

var rootCmd = &cobra.Command{
	Use:   "pr-sheet-sync",
	Short: "A CLI tool to record GitHub pull requests in a Google Sheet.",
	Long: `pr-sheet-sync records pull requests from outside contributors in a Google Sheet.
Each run synchronizes the given pull requests: a new row is appended for a pull
request the sheet does not track yet, and only the changed cells are rewritten
for one it does. Pull requests from organization members, site admins and bots
are skipped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// v holds the flags bound to configuration keys; the environment fills the rest.
var v = viper.New()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		logger := newLogger(verbose)
		logger.Error().Err(err).Msg("an error occurred")
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().String("spreadsheet-id", "", "Target spreadsheet ID (env SPREADSHEET_ID)")
	rootCmd.PersistentFlags().String("sheet", "", "Target sheet name (env SHEET_NAME)")
	rootCmd.PersistentFlags().String("credentials", "", "Service account key file (env CREDENTIALS_PATH)")

	_ = v.BindPFlag(config.KeySpreadsheetID, rootCmd.PersistentFlags().Lookup("spreadsheet-id"))
	_ = v.BindPFlag(config.KeySheetName, rootCmd.PersistentFlags().Lookup("sheet"))
	_ = v.BindPFlag(config.KeyCredentialsPath, rootCmd.PersistentFlags().Lookup("credentials"))
}

// app holds what every command needs once the configuration is loaded.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	store  gateway.SheetStore
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	credentials, err := cfg.CredentialsJSON()
	if err != nil {
		return nil, err
	}
	store, err := gateway.NewSheetsGateway(ctx, credentials, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("sheet", cfg.SheetName).Msg("configuration loaded")
	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// printJSON writes out to standard output as pretty-printed JSON.
func printJSON(cmd *cobra.Command, out any) error {
	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}
