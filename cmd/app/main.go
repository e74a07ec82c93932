package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/aininjas/internal"
	"github.com/starford/aininjas/internal/auth"
	"github.com/starford/aininjas/internal/mcpserver"
	pkgconfig "github.com/starford/aininjas/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// runMCP serves the MCP tools on stdio. Stdout carries the protocol, so
// logs go to stderr.
func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	slog.SetDefault(logger)

	store, st, err := internal.NewContentStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.Info("MCP server starting", slog.String("storage_backend", cfg.Storage.Backend))
	return mcpserver.New(store, version).ServeStdio()
}

// hashPassword prints a bcrypt hash for auth.password_hash. The password is
// taken from the first argument or, if absent, the first line of stdin.
func hashPassword(_ context.Context, cmd *cli.Command) error {
	password := cmd.Args().First()
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("password required as argument or on stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, hash)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "aininjas",
		Usage:   "AI Ninjas content service: articles, courses and the authoring API",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the article tools over MCP on stdio",
				Action: runMCP,
			},
			{
				Name:      "hash-password",
				Usage:     "Print a bcrypt hash for auth.password_hash",
				ArgsUsage: "[password]",
				Action:    hashPassword,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
