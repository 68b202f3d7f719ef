package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/avvvet/coursebuddy/internal/archive"
	"github.com/avvvet/coursebuddy/internal/config"
	"github.com/avvvet/coursebuddy/internal/handlers"
	"github.com/avvvet/coursebuddy/internal/llm"
	"github.com/avvvet/coursebuddy/internal/memory"
	"github.com/avvvet/coursebuddy/internal/models"
	"github.com/avvvet/coursebuddy/internal/prediction"
	"github.com/avvvet/coursebuddy/internal/subjects"
	"github.com/avvvet/coursebuddy/internal/transport"
)

var (
	chatProfile models.TeacherProfile
	archiveDir  string
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects [query]",
	Short: "Rank catalog subjects for a query",
	Long: `Prints the subject suggestions the profile form would offer.
An empty query lists the first catalog subjects.

Example:
  coursebuddy subjects חינוך`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		printSubjects(cmd.OutOrStdout(), handlers.NewSubjectHandler(subjects.Default()), query)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant from the terminal",
	Long: `Starts an interactive chat session. Each line is one turn.
The session lives in memory and is gone when the command exits.

Example:
  coursebuddy chat --name דנה --subject מתמטיקה --level יסודי`,
	RunE: runChat,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect archived chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := archiveDir
		if dir == "" {
			dir = os.Getenv("SESSION_ARCHIVE_DIR")
		}
		if dir == "" {
			dir = "sessionHistory"
		}
		store, err := archive.NewFileStore(dir)
		if err != nil {
			return err
		}
		return printSessions(cmd.OutOrStdout(), store)
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the configured LLM provider answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		provider, err := newProvider(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		text, err := llm.Ping(ctx, provider)
		if err != nil {
			return fmt.Errorf("%s (%s)", err, llm.Classify(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s: %s\n", provider.Name(), text)
		return nil
	},
}

func newProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	return llm.New(ctx, cfg.LLMProvider, cfg.APIKey(), cfg.Model(), llm.Options{
		Timeout:     cfg.LLMTimeout,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	})
}

func printSubjects(out io.Writer, h transport.SubjectService, query string) {
	resp := h.Rank(&models.SubjectRequest{Query: query})
	for _, s := range resp.Suggestions {
		fmt.Fprintln(out, s)
	}
	if query != "" && !resp.Valid {
		fmt.Fprintln(out, "(not a catalog subject)")
	}
}

type sessionLister interface {
	List() ([]models.ArchivedSession, error)
}

func printSessions(out io.Writer, store sessionLister) error {
	sessions, err := store.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No archived sessions")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILENAME\tCREATED\tSIZE")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%d\n", s.Filename, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Size)
	}
	return w.Flush()
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	provider, err := newProvider(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	sessions := memory.NewManager(memory.NewCacheStore(cfg.SessionTTL), logg)
	defer sessions.Close()

	chat := handlers.NewChatHandler(
		provider,
		prediction.NewClient(cfg.PredictionURL, cfg.PredictionTimeout),
		sessions,
		subjects.Default(),
		cfg.HistoryTurns,
		logg,
	)

	return chatLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), chat, chatProfile)
}

// chatLoop reads one turn per line until EOF or "exit".
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, chat transport.ChatService, profile models.TeacherProfile) error {
	start := chat.Start(profile.Name)
	fmt.Fprintf(out, "🤖 %s\n", start.Welcome)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		turnCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := chat.Respond(turnCtx, &models.ChatRequest{
			SessionID: start.SessionID,
			Message:   line,
			Profile:   profile,
		})
		cancel()
		if err != nil {
			return err
		}

		if resp.IsError {
			fmt.Fprintf(out, "⚠️ %s\n", resp.Text)
			continue
		}
		fmt.Fprintf(out, "🤖 %s\n", resp.Text)
	}
}
