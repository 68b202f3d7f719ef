package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/avvvet/coursebuddy/internal/logger"
)

var (
	verbose bool
	timeout time.Duration

	logg *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "coursebuddy",
	Short: "CourseBuddy - course recommendations for teachers",
	Long: `CourseBuddy recommends professional development courses to teachers.

Use it to try the subject autocomplete, chat with the assistant from the
terminal, inspect archived sessions or check the LLM provider is reachable.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if it exists (for development)
		_ = godotenv.Load()

		mode := "production"
		if verbose {
			mode = "development"
		}
		var err error
		logg, err = logger.New(mode)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logg != nil {
			logg.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Timeout for each provider call")

	chatCmd.Flags().StringVar(&chatProfile.Name, "name", "", "Teacher name")
	chatCmd.Flags().StringVar(&chatProfile.SubjectArea, "subject", "", "Subject area (must be a catalog subject)")
	chatCmd.Flags().StringVar(&chatProfile.SchoolType, "school-type", "", "School sector")
	chatCmd.Flags().StringVar(&chatProfile.Language, "language", "", "School language")
	chatCmd.Flags().StringSliceVar(&chatProfile.EducationLevels, "level", nil, "Education level, repeatable")
	_ = chatCmd.MarkFlagRequired("subject")

	sessionsListCmd.Flags().StringVar(&archiveDir, "dir", "", "Archive directory (default SESSION_ARCHIVE_DIR or sessionHistory)")
	sessionsCmd.AddCommand(sessionsListCmd)

	rootCmd.AddCommand(subjectsCmd, chatCmd, sessionsCmd, pingCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
