package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/config"
	"github.com/ifuryst/museos/internal/server"
	"github.com/ifuryst/museos/pkg/logger"
)

var (
	configPath string
	envFile    string
	tokenUser  string
	tokenTTL   time.Duration
	version    = "0.1.0"
	gitCommit  = "unknown"
	buildTime  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "museos",
	Short: "MuseOS - LinkedIn post generation service",
	Long:  `MuseOS finds high-engagement LinkedIn posts by keyword or creator and rewrites them in your own voice.`,
	RunE:  runServer,
}

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Run the hourly schedule check once and exit",
	RunE:  runCron,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a user token signed with the configured secret",
	RunE:  runToken,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("MuseOS %s\n", version)
		fmt.Printf("Git commit: %s\n", gitCommit)
		fmt.Printf("Build time: %s\n", buildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/server.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "user id to put in the token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(cronCmd, tokenCmd, versionCmd)
}

// setup loads the environment and config, then builds the logger and server.
func setup() (*server.Server, *zap.Logger, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	appLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	srv, err := server.NewServer(cfg, appLogger)
	if err != nil {
		return nil, appLogger, fmt.Errorf("failed to create server: %w", err)
	}

	return srv, appLogger, nil
}

func runServer(*cobra.Command, []string) error {
	srv, appLogger, err := setup()
	if appLogger != nil {
		defer appLogger.Sync()
	}
	if err != nil {
		return err
	}

	appLogger.Info("Starting MuseOS server", zap.String("version", version))

	// Start server
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := srv.Start(ctx); err != nil {
			appLogger.Error("Server failed to start", zap.Error(err))
			cancel()
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		appLogger.Info("Shutting down server...")
	case <-ctx.Done():
		appLogger.Info("Server context cancelled")
	}

	// Graceful shutdown
	if err := srv.Shutdown(context.Background()); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	appLogger.Info("Server exited")
	return nil
}

func runCron(cmd *cobra.Command, _ []string) error {
	srv, appLogger, err := setup()
	if appLogger != nil {
		defer appLogger.Sync()
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := srv.Cron.RunHourlyCheck(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("hourly check failed: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func runToken(cmd *cobra.Command, _ []string) error {
	srv, appLogger, err := setup()
	if appLogger != nil {
		defer appLogger.Sync()
	}
	if err != nil {
		return err
	}

	token, err := srv.Auth.GenerateToken(tokenUser, tokenTTL)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
