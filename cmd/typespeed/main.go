// Package main provides the CLI entrypoint for typespeed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typespeed/internal/config"
	"github.com/verte-zerg/typespeed/internal/generator"
	"github.com/verte-zerg/typespeed/internal/logging"
	"github.com/verte-zerg/typespeed/internal/model"
	"github.com/verte-zerg/typespeed/internal/stats"
	"github.com/verte-zerg/typespeed/internal/store"
	"github.com/verte-zerg/typespeed/internal/tui"
	"github.com/verte-zerg/typespeed/internal/wordlist"
)

const (
	defaultHistoryWindow = 5
	maxFPS               = 240
)

var (
	testWords     int
	testMinWords  int
	testMaxWords  int
	testCharLimit int
	testFPS       int
	testWordList  string
	testHistory   bool
	logFile       string
	logLevel      string

	historySince  string
	historyLast   int
	historyWindow int

	wordlistPath  string
	wordlistForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typespeed",
		Short:         "Terminal typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.Flags().IntVar(&testWords, "words", config.DefaultWords, "initial number of words per passage")
	rootCmd.Flags().IntVar(&testMinWords, "min-words", config.DefaultMinWords, "lowest word count on the slider")
	rootCmd.Flags().IntVar(&testMaxWords, "max-words", config.DefaultMaxWords, "highest word count on the slider")
	rootCmd.Flags().IntVar(&testCharLimit, "char-limit", config.DefaultCharLimit, "maximum characters in the text field for short words")
	rootCmd.Flags().IntVar(&testFPS, "fps", config.DefaultFPS, "stats refresh rate while typing")
	rootCmd.Flags().StringVar(&testWordList, "wordlist", "", "word list path (default: config dir words.txt)")
	rootCmd.Flags().BoolVar(&testHistory, "history", false, "save finished tests to the local history database")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newWordlistCmd())

	return rootCmd
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings := fileCfg.Test
	applyIntConfig(cmd, "words", &testWords, settings.Words)
	applyIntConfig(cmd, "min-words", &testMinWords, settings.MinWords)
	applyIntConfig(cmd, "max-words", &testMaxWords, settings.MaxWords)
	applyIntConfig(cmd, "char-limit", &testCharLimit, settings.CharLimit)
	applyIntConfig(cmd, "fps", &testFPS, settings.FPS)
	applyStringConfig(cmd, "wordlist", &testWordList, settings.WordList)
	applyBoolConfig(cmd, "history", &testHistory, settings.History)
	applyStringConfig(cmd, "log-file", &logFile, settings.LogFile)
	applyStringConfig(cmd, "log-level", &logLevel, settings.LogLevel)

	cfg := model.Config{
		Words:        testWords,
		MinWords:     testMinWords,
		MaxWords:     testMaxWords,
		CharLimit:    testCharLimit,
		FPS:          testFPS,
		WordListPath: testWordList,
		History:      testHistory,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if err := checkWordList(cfg.WordListPath); err != nil {
		clog := consoleLogger()
		clog.Warn().Err(err).Str("path", cfg.WordListPath).Msg(wordListHint(cfg.WordListPath))
	}

	logger, closeLog, err := logging.OpenFile(logFile, logLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()

	var recorder tui.ResultRecorder
	if cfg.History {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error().Err(cerr).Msg("failed to close db")
			}
		}()
		recorder = st
	}

	logger.Info().
		Int("words", cfg.Words).
		Int("char_limit", cfg.CharLimit).
		Str("wordlist", cfg.WordListPath).
		Bool("history", cfg.History).
		Msg("starting typing test")

	m := tui.NewModel(cfg, generator.New(), recorder, logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved results",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N results")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the trend line")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	hcfg := model.HistoryConfig{Last: historyLast, Window: historyWindow}
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		hcfg.Since = &parsed
	}

	logger := consoleLogger()
	dbPath := config.DefaultDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		logger.Warn().Msg("no history yet; run with --history to save results")
		return nil
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	results, err := st.ListResults(context.Background(), hcfg)
	if err != nil {
		return fmt.Errorf("failed to list results: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrend(out, results, hcfg.Window, stats.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderResults(out, results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Install the built-in word list",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCmd,
	}
	cmd.Flags().StringVar(&wordlistPath, "path", "", "destination (default: config dir words.txt)")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite existing file")
	return cmd
}

func runWordlistCmd(_ *cobra.Command, _ []string) error {
	logger := consoleLogger()
	outPath := wordlistPath
	if outPath == "" {
		outPath = config.DefaultWordListPath()
	}
	if !wordlistForce {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("word list already exists: %s (use --force to overwrite)", outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat word list: %w", err)
		}
	}
	words := wordlist.Default()
	if err := wordlist.WriteList(outPath, words); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logger.Info().Str("path", outPath).Int("words", len(words)).Msg("wrote word list")
	return nil
}

// checkWordList reports whether the passage corpus can be read.
func checkWordList(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func wordListHint(path string) string {
	if path == config.DefaultWordListPath() {
		return "word list not found; run: typespeed wordlist"
	}
	return fmt.Sprintf("word list not found; run: typespeed wordlist --path %s", path)
}

func consoleLogger() zerolog.Logger {
	logger, err := logging.Console(logLevel)
	if err != nil {
		logger, _ = logging.Console(config.DefaultLogLevel)
		logger.Warn().Err(err).Msg("falling back to default log level")
	}
	return logger
}

func applyStringConfig(cmd *cobra.Command, name string, target *string, value string) {
	if value == "" || cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyIntConfig(cmd *cobra.Command, name string, target *int, value int) {
	if value == 0 || cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyBoolConfig(cmd *cobra.Command, name string, target *bool, value bool) {
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typespeed configuration
# Uncomment a value to enable it. Environment variables (TYPESPEED_*) override
# these values and CLI flags override both.

[test]
# words = %d              # Initial words per passage
# min-words = %d          # Lowest slider value
# max-words = %d          # Highest slider value
# char-limit = %d         # Text field cap for words shorter than it
# fps = %d                # Stats refresh rate while typing
# wordlist = %q
# history = false         # Save finished tests to the local database
# log-file = ""           # Log file path; logging is off when empty
# log-level = %q
`,
		config.DefaultWords,
		config.DefaultMinWords,
		config.DefaultMaxWords,
		config.DefaultCharLimit,
		config.DefaultFPS,
		config.DefaultWordListPath(),
		config.DefaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.MinWords < 1 {
		return fmt.Errorf("--min-words must be >= 1")
	}
	if cfg.MaxWords < cfg.MinWords {
		return fmt.Errorf("--max-words must be >= --min-words")
	}
	if cfg.CharLimit < 1 {
		return fmt.Errorf("--char-limit must be >= 1")
	}
	if cfg.FPS < 1 || cfg.FPS > maxFPS {
		return fmt.Errorf("--fps must be between 1 and %d", maxFPS)
	}
	if cfg.WordListPath == "" {
		return fmt.Errorf("--wordlist must not be empty")
	}
	return nil
}
