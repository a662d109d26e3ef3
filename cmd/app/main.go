package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/jotter/internal"
	"github.com/starford/jotter/internal/labelcolor"
	pkgconfig "github.com/starford/jotter/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, cmd.String("user"),
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
	)
}

func export(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := internal.RunExport(ctx, cmd.String("user"), cmd.String("dir"),
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
	)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "exported %d ideas to %s\n", n, cmd.String("dir"))
	return err
}

func label(_ context.Context, cmd *cli.Command) error {
	labels := cmd.Args().Slice()
	if len(labels) == 0 {
		return fmt.Errorf("at least one label is required")
	}
	return printLabels(cmd.Root().Writer, labels)
}

// printLabels renders each label as a coloured badge followed by its
// background colour and contrast.
func printLabels(w io.Writer, labels []string) error {
	for _, l := range labels {
		b := labelcolor.BadgeFor(l)
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(string(b.Background))).
			Foreground(lipgloss.Color(string(b.Foreground.Hex()))).
			Padding(0, 1)
		if _, err := fmt.Fprintf(w, "%s  %s  %s\n", style.Render(l), b.Background, b.Foreground); err != nil {
			return err
		}
	}
	return nil
}

func userFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "Email of the account to act as",
		Required: true,
		Sources:  cli.EnvVars("JOTTER_USER"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "jotter",
		Usage:  "Personal idea box with folders, tags, live search and Markdown import/export",
		Action: serve,
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
				Name:   "serve",
				Usage:  "Run the HTTP API, event stream and inbox watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve one user's ideas to an MCP client over stdio",
				Flags:  []cli.Flag{userFlag()},
				Action: mcp,
			},
			{
				Name:  "export",
				Usage: "Write a user's ideas as Markdown files",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory",
						Value:   "./export",
					},
				},
				Action: export,
			},
			{
				Name:      "label",
				Usage:     "Print the badge colours assigned to labels",
				ArgsUsage: "LABEL...",
				Action:    label,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
