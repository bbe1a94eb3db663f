// Command restaurant-server serves the restaurant tools over MCP on stdio.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/config"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/logging"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/menu"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/prompt"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/restaurant"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/transcript"
)

func main() {
	v := config.NewViper()
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "restaurant-server",
		Short: "Restaurant assistant tool server",
		Long: `Serves the restaurant tools over the Model Context Protocol on stdin/stdout:

  order  look a dish up on the menu and confirm it
  call   notify a waiter and return the call log
  else   handle anything that is neither

Logs go to stderr; stdout carries the protocol.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, configFile)
			if err != nil {
				return err
			}

			return serve(cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.String("menu", v.GetString("menu.path"), "menu file, one JSON object per line")
	flags.String("transcript", v.GetString("transcript.path"), "transcript log file")
	flags.String("log-level", v.GetString("log.level"), "debug, info, warn or error")

	_ = v.BindPFlag("menu.path", flags.Lookup("menu"))
	_ = v.BindPFlag("transcript.path", flags.Lookup("transcript"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	menuCmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the parsed menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, configFile)
			if err != nil {
				return err
			}

			m, err := menu.Load(cfg.Menu.Path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entry := range m.Entries() {
				fmt.Fprintf(out, "%s\t%s\n", entry.Item, entry.Description)
			}

			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", restaurant.ServerName, restaurant.ServerVersion)
		},
	}

	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func load(v *viper.Viper, file string) (*config.Config, error) {
	cfg, err := config.Load(v, file)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func serve(cfg *config.Config) error {
	logger := logging.New(os.Stderr, cfg.Log.Level, "server")

	instructions, err := prompt.Load(cfg.Prompt.Path)
	if err != nil {
		logger.Warn("using built-in prompt", "error", err)
	}

	source, err := menu.Open(cfg.Menu.Path, cfg.Menu.Reload)
	if err != nil {
		logger.Error("menu unavailable, orders will fail", "path", cfg.Menu.Path, "error", err)
	}

	writer := transcript.NewWriter(cfg.Transcript.Path, transcript.WithMaxBytes(cfg.Transcript.MaxBytes))

	srv, names := restaurant.NewServer(restaurant.Dependencies{
		Menu:         source,
		Transcript:   writer,
		Logger:       logger,
		Instructions: instructions,
	})

	logger.Info("tool server ready",
		"tools", names,
		"menu", cfg.Menu.Path,
		"reload", cfg.Menu.Reload,
		"transcript", writer.Path(),
		"prompt", cfg.Prompt.Path,
	)
	logger.Debug("instructions", "prompt", instructions)

	errLog := logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})

	if err := server.ServeStdio(srv, server.WithErrorLogger(errLog)); err != nil {
		return fmt.Errorf("serving stdio: %w", err)
	}

	logger.Info("tool server stopped")

	return nil
}
