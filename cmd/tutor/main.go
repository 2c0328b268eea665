package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rrens/tutor-chat/internal/app"
	"github.com/Rrens/tutor-chat/internal/config"
	"github.com/Rrens/tutor-chat/internal/logging"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

var (
	// Global flags
	verbose  bool
	provider string
	model    string
	apiKey   string
	noColor  bool

	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Instructional tutoring chat in the terminal",
	Long: `tutor drafts an ADDIE teaching plan from your first question and then
teaches it turn by turn, adapting the plan to your feedback.

Run without arguments to start an interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		// Logs go to stderr and would interleave with the chat
		if !verbose {
			cfg.Logging.Level = "warn"
		}
		logCloser, err = logging.Setup(cfg.Logging, cfg.Server.Environment)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable info level logging")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider (defaults to llm.default_provider)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model override for the provider")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("TUTOR_API_KEY"), "Use your own API key for the provider")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Print plain text without styling")

	rootCmd.AddCommand(chatCmd, conversationsCmd, referenceCmd)
}

// openApp builds the shared components for one command
func openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("storage", cfg.Storage.Driver).Msg("store ready")
	return a, nil
}

func llmSettings() tutor.LLMSettings {
	p := provider
	if p == "" {
		p = cfg.LLM.DefaultProvider
	}
	return tutor.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
