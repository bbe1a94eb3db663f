// Command restaurant-client chats with a customer, letting a hosted model
// call the restaurant tools served by restaurant-server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/chat"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/config"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/gateway"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/logging"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/prompt"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/ai"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/ai/provider"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/transcript"
)

var version = "1.0.0"

func main() {
	v := config.NewViper()
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "restaurant-client",
		Short: "Restaurant assistant chat",
		Long: `Starts restaurant-server, checks that the chat model answers and then
reads customer messages until 'quit', 'exit' or end of input.

Try:
  I'd like a latte
  Could someone bring more napkins?
  Hello!`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, configFile)
			if err != nil {
				return err
			}

			return run(cmd.Context(), cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.String("menu", v.GetString("menu.path"), "menu file passed on to the server")
	flags.String("transcript", v.GetString("transcript.path"), "transcript log file")
	flags.String("log-level", v.GetString("log.level"), "debug, info, warn or error")

	_ = v.BindPFlag("menu.path", flags.Lookup("menu"))
	_ = v.BindPFlag("transcript.path", flags.Lookup("transcript"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}

			logger := logging.New(os.Stderr, cfg.Log.Level, "client")

			gw, err := gateway.Dial(cmd.Context(), serverConfig(cfg), os.Stderr, logger)
			if err != nil {
				return err
			}
			defer gw.Close()

			out := cmd.OutOrStdout()
			for _, tool := range gw.Definitions() {
				fmt.Fprintf(out, "%s(%s)\t%s\n", tool.Name, strings.Join(tool.InputSchema.Required, ", "), tool.Description)
			}

			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "restaurant-client v%s\n", version)
		},
	}

	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func load(v *viper.Viper, file string) (*config.Config, error) {
	cfg, err := config.Load(v, file)
	if err != nil {
		return nil, err
	}

	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// serverConfig hands the shared settings to the server through its
// environment. Entries from server.env come last and win.
func serverConfig(cfg *config.Config) config.ServerConfig {
	server := cfg.Server
	server.Env = append([]string{
		config.EnvPrefix + "_MENU_PATH=" + cfg.Menu.Path,
		config.EnvPrefix + "_TRANSCRIPT_PATH=" + cfg.Transcript.Path,
		config.EnvPrefix + "_PROMPT_PATH=" + cfg.Prompt.Path,
		config.EnvPrefix + "_LOG_LEVEL=" + cfg.Log.Level,
	}, cfg.Server.Env...)

	return server
}

func run(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, cfg.Log.Level, "client")

	model, err := provider.New(cfg.Model)
	if err != nil {
		return err
	}

	// Nothing else starts until the model has answered.
	reply, err := ai.Probe(ctx, model)
	if err != nil {
		return err
	}

	logger.Info("model ready", "model", model.Model(), "reply", reply)

	gw, err := gateway.Dial(ctx, serverConfig(cfg), os.Stderr, logger)
	if err != nil {
		return fmt.Errorf("tool server unavailable: %w", err)
	}
	defer gw.Close()

	agent := ai.NewAgent(model, gw, systemPrompt(cfg, gw, logger), logger, ai.WithMaxSteps(cfg.Agent.MaxSteps))

	input, width, err := openInput()
	if err != nil {
		return err
	}

	// Unblocks a pending read when a signal arrives.
	defer context.AfterFunc(ctx, func() { _ = input.Close() })()

	renderer := chat.NewRenderer(os.Stdout, width)
	renderer.Banner(fmt.Sprintf("%s %s", gw.Server().Name, gw.Server().Version), gw.Tools())
	renderer.Info(fmt.Sprintf("Model %s is ready.", agent.Model()))

	loop := chat.NewLoop(
		agent,
		input,
		renderer,
		transcript.NewWriter(cfg.Transcript.Path, transcript.WithMaxBytes(cfg.Transcript.MaxBytes)),
		logger,
		chat.WithTurnTimeout(cfg.Agent.Timeout),
	)

	return loop.Run(ctx)
}

// systemPrompt prefers the local prompt file, then the server's instructions.
func systemPrompt(cfg *config.Config, gw *gateway.Gateway, logger *log.Logger) string {
	text, err := prompt.Load(cfg.Prompt.Path)
	if err == nil {
		return text
	}

	if instructions := gw.Instructions(); instructions != "" {
		logger.Debug("using server instructions as prompt", "reason", err)
		return instructions
	}

	logger.Warn("using built-in prompt", "error", err)

	return text
}

func openInput() (chat.Input, int, error) {
	if !readline.DefaultIsTerminal() {
		return chat.NewReaderInput(os.Stdin), chat.DefaultWidth, nil
	}

	var history string
	if dir, err := os.UserCacheDir(); err == nil {
		history = filepath.Join(dir, "restaurant-client", "history")
		_ = os.MkdirAll(filepath.Dir(history), 0o755)
	}

	input, err := chat.NewReadlineInput("> ", history)
	if err != nil {
		return nil, 0, err
	}

	return input, readline.GetScreenWidth(), nil
}
