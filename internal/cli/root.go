// Package cli описывает команды interviewd: serve, migrate и user add.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile string
	version = "dev" // задается через ldflags при сборке
)

var rootCmd = &cobra.Command{
	Use:   "interviewd",
	Short: "Voice interview service",
	Long: `interviewd runs the voice interview API: it greets the candidate,
reads questions aloud, transcribes recorded answers and collects
feedback for each answer in the background.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

// Execute запускает корневую команду. Вызывается из main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the .env file (optional)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
}

// loadEnv подгружает .env, если он есть. Переменные окружения процесса
// имеют приоритет над файлом.
func loadEnv() error {
	if envFile == "" {
		return nil
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("ошибка загрузки %s: %w", envFile, err)
	}
	return nil
}
