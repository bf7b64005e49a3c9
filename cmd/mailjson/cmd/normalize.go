package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mailjson/mailjson"
)

func (a *app) normalizeCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Parse a message document and write it back out in canonical form",
		Long: `Parse a message document and write it back out in canonical form.

The document is read from the named file, or from standard input when no file
or "-" is given. Parts of the document that cannot be decoded are reported as
warnings and left out of the output unless --strict is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			tc, err := a.transcoder()
			if err != nil {
				return err
			}

			msg, err := tc.Parse(cmd.Context(), data)
			var perr *mailjson.PartialError
			switch {
			case errors.As(err, &perr) && !strict:
				a.logger.Warn("writing a partly decoded message", "problems", len(perr.Errs))
			case err != nil:
				return err
			}

			out, err := tc.Write(cmd.Context(), msg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any part of the document cannot be decoded")

	return cmd
}
