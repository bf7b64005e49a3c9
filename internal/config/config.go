package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mailjson/display"
)

// StoreEnv names the environment variable consulted when --store is not set.
const StoreEnv = "MAILJSON_STORE"

// Config captures the command-line options shared by every command.
type Config struct {
	Store          string
	LogLevel       string
	Indent         string
	FolderPrefix   string
	MaxDepth       int
	ResolveTimeout time.Duration
	Mode           display.Mode
	Inline         bool
	DecodeWords    bool
}

// RegisterFlags attaches the shared flags to the provided command as
// persistent flags, so every subcommand has them.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("store", "", "Path to the binary store database (falls back to "+StoreEnv+" env var)")
	flags.String("log-level", "warn", "Logging level: debug, info, warn, error")
	flags.String("indent", "  ", "Indent for JSON output, empty for compact output")
	flags.String("folder-prefix", "", "Prefix joined to the folder of written messages")
	flags.Int("max-depth", 10, "How deep multipart bodies may nest, 0 for no limit")
	flags.Duration("resolve-timeout", 30*time.Second, "Time limit for each read from the binary store, 0 for none")
	flags.String("mode", "raw", "How text bodies are written: raw or display")
	flags.Bool("inline", false, "Write binary bodies as base64 rather than as references")
	flags.Bool("decode-words", false, "Decode RFC 2047 encoded words in plain headers")
}

// Load converts the parsed Cobra flags into a Config struct with validation.
func Load(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	store, err := flags.GetString("store")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	indent, err := flags.GetString("indent")
	if err != nil {
		return Config{}, err
	}
	folderPrefix, err := flags.GetString("folder-prefix")
	if err != nil {
		return Config{}, err
	}
	maxDepth, err := flags.GetInt("max-depth")
	if err != nil {
		return Config{}, err
	}
	resolveTimeout, err := flags.GetDuration("resolve-timeout")
	if err != nil {
		return Config{}, err
	}
	mode, err := flags.GetString("mode")
	if err != nil {
		return Config{}, err
	}
	inline, err := flags.GetBool("inline")
	if err != nil {
		return Config{}, err
	}
	decodeWords, err := flags.GetBool("decode-words")
	if err != nil {
		return Config{}, err
	}

	if store == "" {
		store = os.Getenv(StoreEnv)
	}

	if store == "" {
		store, err = defaultStore()
		if err != nil {
			return Config{}, err
		}
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	m, err := display.ParseMode(mode)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --mode: %w", err)
	}

	cfg := Config{
		Store:          filepath.Clean(store),
		LogLevel:       logLevel,
		Indent:         indent,
		FolderPrefix:   folderPrefix,
		MaxDepth:       maxDepth,
		ResolveTimeout: resolveTimeout,
		Mode:           m,
		Inline:         inline,
		DecodeWords:    decodeWords,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("--max-depth must not be negative")
	}
	if cfg.ResolveTimeout < 0 {
		return fmt.Errorf("--resolve-timeout must not be negative")
	}
	if strings.Trim(cfg.Indent, " \t") != "" {
		return fmt.Errorf("--indent may only hold spaces and tabs")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

// Level returns the slog level named by LogLevel.
func (cfg Config) Level() slog.Level {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

func defaultStore() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mailjson", "binaries.db"), nil
}
