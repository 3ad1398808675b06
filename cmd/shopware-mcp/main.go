// shopware-mcp exposes a Shopware shop's Store API as MCP tools.
//
// Usage:
//
//	shopware-mcp serve                  # stdio transport
//	shopware-mcp serve --http :8080     # HTTP/SSE transport
//	shopware-mcp version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/shopware-mcp/internal/tools"
	"github.com/RobinCoderZhao/shopware-mcp/pkg/config"
	"github.com/RobinCoderZhao/shopware-mcp/pkg/mcpserver"
)

var version = "dev"

type serverConfig struct {
	Shop tools.Config `yaml:"shop"`
	HTTP struct {
		Addr       string `yaml:"addr" env:"MCP_HTTP_ADDR"`
		AuthSecret string `yaml:"auth_secret" env:"MCP_HTTP_AUTH_SECRET"`
	} `yaml:"http"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "shopware-mcp",
		Short: "MCP server for the Shopware Store API",
		Long:  "shopware-mcp translates MCP tool calls into Shopware Store API requests: product search, carts, orders, categories, reviews and checkout method listings.",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, httpAddr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve over HTTP on this address instead of stdio (e.g. :8080)")
	return cmd
}

func runServe(configPath, httpAddr string) error {
	// .env is optional and only a convenience for local runs.
	_ = godotenv.Load()

	var cfg serverConfig
	if err := config.LoadOrDefault(configPath, &cfg); err != nil {
		return err
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}

	// stdout belongs to the stdio transport; all logging goes to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	deps := tools.NewDeps(cfg.Shop, logger)

	server := mcpserver.New("shopware-mcp", version)
	server.SetLogger(logger)
	server.Use(mcpserver.RecoveryMiddleware())
	server.Use(mcpserver.LoggingMiddleware(logger))
	server.RegisterTools(tools.All(deps)...)

	if cfg.HTTP.Addr != "" {
		server.SetHTTPAuthSecret(cfg.HTTP.AuthSecret)
		return server.RunHTTP(cfg.HTTP.Addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.RunStdio(ctx)
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shopware-mcp %s\n", version)
		},
	}
}
