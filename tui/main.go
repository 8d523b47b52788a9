package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"chatkit/sdk/chat"
	"chatkit/tui/internal/app"
	"chatkit/tui/internal/mock"
)

func main() {
	cliApp := &cli.App{
		Name:  "chatkit-tui",
		Usage: "Terminal chat widget for a chatkit backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "Backend base URL",
				Value:   "http://localhost:8000",
				EnvVars: []string{"CHATKIT_BACKEND"},
			},
			&cli.StringFlag{
				Name:  "agent",
				Usage: "Agent to chat with (default: backend's default agent)",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Model override sent with every turn",
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Run the bundled mock backend instead of the TUI",
			},
			&cli.IntFlag{
				Name:  "mock-port",
				Usage: "Port for the mock backend",
				Value: 8000,
			},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("mock") {
		return mock.NewServer(c.Int("mock-port")).Start()
	}

	opts := []chat.ClientOption{
		chat.WithTimeout(60 * time.Second),
		chat.WithLogger(chat.NewLoggerFromEnv()),
	}
	if model := c.String("model"); model != "" {
		opts = append(opts, chat.WithModel(model))
	}

	client, err := chat.NewClient(c.String("backend"), opts...)
	if err != nil {
		return err
	}

	agentID := c.String("agent")
	if agentID == "" {
		md, err := client.Metadata(c.Context)
		if err != nil {
			return fmt.Errorf("failed to discover agents: %w", err)
		}
		agentID = md.DefaultAgent
	}

	model := app.New(client, agentID)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
