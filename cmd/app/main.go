package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/dosebell/internal"
	pkgconfig "github.com/starford/dosebell/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// configFlag is defined on the root command; subcommands inherit it.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file (embedded defaults are used when it does not exist)",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
}

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), internal.DefaultConfigYAML, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func channels(flag string) ([]string, error) {
	switch flag {
	case internal.ChannelSMS, internal.ChannelEmail:
		return []string{flag}, nil
	case "all":
		return []string{internal.ChannelSMS, internal.ChannelEmail}, nil
	default:
		return nil, fmt.Errorf("unknown channel %q (want sms, email or all)", flag)
	}
}

func send(ctx context.Context, cmd *cli.Command) error {
	chs, err := channels(cmd.String("channel"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Send(ctx, chs, os.Stdout,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr))
}

func check(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Check(ctx, os.Stdout, !cmd.Bool("no-color"),
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr))
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, version,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr))
}

func main() {
	cmd := &cli.Command{
		Name:    "dosebell",
		Usage:   "Daily medication reminders over SMS and email",
		Version: version,
		Action:  serve,
		Flags:   []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP trigger server (and the scheduler when schedule.cron is set)",
				Action: serve,
			},
			{
				Name:  "send",
				Usage: "Run one dispatch now and print the summary as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "channel",
						Usage: "sms, email or all",
						Value: "all",
					},
				},
				Action: send,
			},
			{
				Name:  "check",
				Usage: "Show today's reminders, upcoming entries and a message preview without sending",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-color",
						Usage: "Disable styled output",
					},
				},
				Action: check,
			},
			{
				Name:   "mcp",
				Usage:  "Serve read-only reminder tools over MCP stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
