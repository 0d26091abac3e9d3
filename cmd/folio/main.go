// Command folio runs the role-aware portfolio assistant as an HTTP server
// (folio serve) or answers single questions from the terminal (folio ask).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hupe1980/folio/internal/config"
	"github.com/hupe1980/folio/logging"
)

var (
	// Global flags
	envFile string
	verbose bool

	cfg    *config.Config
	logger *logging.StructuredLogger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - role-aware portfolio assistant",
	Long: `folio answers questions about a professional portfolio, adapting tone,
content and follow-up actions to who is asking: hiring managers, developers,
casual visitors or anonymous confessions.

Configuration is read from the environment (and an optional .env file).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("load env file: %w", err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		level := logging.ParseLevel(cfg.LogLevel)
		if verbose {
			level = logging.LogLevelDebug
		}
		logger = logging.NewLogger(&logging.LoggerConfig{
			Level:     level,
			Format:    cfg.LogFormat,
			Output:    cmd.ErrOrStderr(),
			Component: "folio",
		})
		slog.SetDefault(logger.Slog())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
