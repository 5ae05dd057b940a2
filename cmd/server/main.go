// @title         resumebot API
// @version       1.0
// @description   Профили участников, собранные из резюме, загруженных через Telegram-бота.
// @BasePath      /api
// @schemes       http
// @host          localhost:3000
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	envFile string
)

var rootCmd = &cobra.Command{
	Use:           "resumebot",
	Short:         "Resume to profile service",
	Long:          "resumebot receives resumes through a Telegram bot, extracts work history and skills with an LLM and serves member profiles over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
