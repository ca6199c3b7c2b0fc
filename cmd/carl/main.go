// Package main is the entry point for the Carl chatbot.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/easeaico/carl-bot/internal/agent"
	"github.com/easeaico/carl-bot/internal/chat"
	"github.com/easeaico/carl-bot/internal/config"
	"github.com/easeaico/carl-bot/internal/corpus"
	"github.com/easeaico/carl-bot/internal/storage"
	"github.com/easeaico/carl-bot/internal/types"
)

var (
	verbose    bool
	newSession bool
	cfg        config.Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "carl",
	Short: "Carl - a small rule and Markov chain chatbot",
	Long: `Carl answers from an ordered table of patterns and, when nothing matches,
makes up a sentence with a Markov chain trained on a built-in corpus.
His mood follows the sentiment of what you say.

Run without arguments to start chatting. Type exit, quit or bye to leave.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if newSession {
			if cfg.SessionID != "" {
				return fmt.Errorf("--new-session conflicts with session %q", cfg.SessionID)
			}
			cfg.SessionID = storage.NewSessionID()
			logger.Info("started new history session", zap.String("session", cfg.SessionID))
			fmt.Fprintf(cmd.ErrOrStderr(), "Session %s (resume with --session %s)\n", cfg.SessionID, cfg.SessionID)
		}
		return cfg.Finalize()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runChat,
}

var historySpeaker string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the saved conversation transcript",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	generateSeed   []string
	generateLength int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print one Markov chain sentence",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	// Flags override env; PersistentPreRunE validates the result.
	cfg = config.FromEnv()

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	flags.StringVar(&cfg.HistoryBackend, "backend", cfg.HistoryBackend, "History backend: file, sqlite, postgres, redis or memory")
	flags.StringVar(&cfg.HistoryFile, "history-file", cfg.HistoryFile, "History file for the file backend")
	flags.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "Database path for the sqlite backend")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL URL for the postgres backend")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the redis backend")
	flags.StringVar(&cfg.SessionID, "session", cfg.SessionID, "Session id for database backends (defaults to \"default\")")
	flags.BoolVar(&newSession, "new-session", false, "Start a fresh session with a random id")
	flags.StringVar(&cfg.PersonaFile, "persona", cfg.PersonaFile, "YAML persona file with rules, synonyms and keywords")
	flags.StringVar(&cfg.CorpusFile, "corpus", cfg.CorpusFile, "Training corpus file, one sentence per line")
	flags.IntVar(&cfg.MarkovOrder, "order", cfg.MarkovOrder, "Markov chain order")
	flags.IntVar(&cfg.ReplyLength, "length", cfg.ReplyLength, "Words per generated reply")

	historyCmd.Flags().StringVar(&historySpeaker, "speaker", "", "Only print lines from this speaker: user or carl")

	generateCmd.Flags().StringSliceVar(&generateSeed, "seed", nil, "Starting words, as many as the chain order")
	generateCmd.Flags().IntVar(&generateLength, "words", 0, "Sentence length (defaults to --length)")

	rootCmd.AddCommand(historyCmd, generateCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withCarl(ctx, func(carl *agent.Carl) error {
		err := chat.NewSession(carl, cmd.InOrStdin(), cmd.OutOrStdout(), logger).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var only types.Speaker
	switch strings.ToLower(historySpeaker) {
	case "":
	case strings.ToLower(string(types.SpeakerUser)):
		only = types.SpeakerUser
	case strings.ToLower(string(types.SpeakerBot)):
		only = types.SpeakerBot
	default:
		return fmt.Errorf("unknown speaker %q: want user or carl", historySpeaker)
	}

	store, err := storage.Open(ctx, cfg.StorageOptions(), logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	lines, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	for _, line := range lines {
		if only != "" {
			if speaker, _, ok := types.SplitHistoryLine(line); !ok || speaker != only {
				continue
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	text, err := corpus.Load(cfg.CorpusFile)
	if err != nil {
		return err
	}
	length := generateLength
	if length <= 0 {
		length = cfg.ReplyLength
	}
	carl, err := agent.NewCarl(cmd.Context(), &cfg, text, storage.NewMemoryStore(nil), logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), carl.Generate(generateSeed, length))
	return nil
}

func withCarl(ctx context.Context, fn func(*agent.Carl) error) error {
	text, err := corpus.Load(cfg.CorpusFile)
	if err != nil {
		return err
	}
	store, err := storage.Open(ctx, cfg.StorageOptions(), logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	carl, err := agent.NewCarl(ctx, &cfg, text, store, logger)
	if err != nil {
		return fmt.Errorf("failed to create carl: %w", err)
	}
	return fn(carl)
}
