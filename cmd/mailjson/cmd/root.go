package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mailjson/internal/config"
	"github.com/zostay/go-mailjson/mailjson"
	"github.com/zostay/go-mailjson/resolver/sqlite"
)

// app is the state shared by the commands of one run.
type app struct {
	cfg    config.Config
	level  *slog.LevelVar
	logger *slog.Logger
	store  *sqlite.Store
}

// NewRootCommand builds the mailjson command and all its subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:                "mailjson",
		Short:              "Tools for working with JSON mail message documents",
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	config.RegisterFlags(rootCmd)

	rootCmd.AddCommand(a.normalizeCmd())
	rootCmd.AddCommand(a.checkCmd())
	rootCmd.AddCommand(a.treeCmd())
	rootCmd.AddCommand(a.storeCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// Execute runs the mailjson command.
func Execute() {
	err := NewRootCommand().Execute()
	cobra.CheckErr(err)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.level = new(slog.LevelVar)
	a.level.Set(cfg.Level())
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.level}))
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.store == nil {
		return nil
	}

	err := a.store.Close()
	a.store = nil
	return err
}

// openStore opens the binary store. Unless create is set, a store that does
// not exist yet is not created and nil is returned.
func (a *app) openStore(create bool) (*sqlite.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	if !create {
		if _, err := os.Stat(a.cfg.Store); errors.Is(err, fs.ErrNotExist) {
			a.logger.Debug("binary store not found, references will not resolve", "store", a.cfg.Store)
			return nil, nil
		}
	}

	s, err := sqlite.Open(a.cfg.Store)
	if err != nil {
		return nil, err
	}

	a.store = s
	return s, nil
}

// transcoder returns a Transcoder configured from the flags.
func (a *app) transcoder() (*mailjson.Transcoder, error) {
	opts := []mailjson.Option{
		mailjson.WithLogger(a.logger),
		mailjson.WithMaxDepth(a.cfg.MaxDepth),
		mailjson.WithResolveTimeout(a.cfg.ResolveTimeout),
		mailjson.WithFolderPrefix(a.cfg.FolderPrefix),
		mailjson.WithDisplayMode(a.cfg.Mode),
		mailjson.WithIndent(a.cfg.Indent),
	}

	if a.cfg.Inline {
		opts = append(opts, mailjson.InlineBinary())
	}

	if a.cfg.DecodeWords {
		opts = append(opts, mailjson.DecodeHeaderWords())
	}

	s, err := a.openStore(false)
	if err != nil {
		return nil, err
	}

	if s != nil {
		opts = append(opts, mailjson.WithResolver(s))
	}

	return mailjson.New(opts...), nil
}

// readInput reads the named file, or standard input when the name is absent
// or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("unable to read message document: %w", err)
	}
	return data, nil
}
