package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mailjson/mailjson"
)

// ErrRoundTrip is returned by the check command when the document does not
// survive a round trip unchanged.
var ErrRoundTrip = errors.New("message document does not round-trip")

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Shows the diff of a message document round-trip",
		Long: `Parse a message document, write it back out, and show how the result differs
from the original. Key order and spacing are ignored. The command fails when
the document cannot be decoded in full or the result differs.`,
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

			w := cmd.OutOrStdout()

			msg, err := tc.Parse(cmd.Context(), data)
			var perr *mailjson.PartialError
			switch {
			case errors.As(err, &perr):
				for _, e := range perr.Errs {
					_, _ = fmt.Fprintf(w, "! %v\n", e)
				}
				return err
			case err != nil:
				return err
			}

			out, err := tc.Write(cmd.Context(), msg)
			if err != nil {
				return err
			}

			want, err := canonical(data)
			if err != nil {
				return err
			}

			got, err := canonical(out)
			if err != nil {
				return err
			}

			if !printDiff(w, want, got) {
				_, err = fmt.Fprintln(w, "round trip is clean")
				return err
			}

			return ErrRoundTrip
		},
	}
}

// canonical re-indents a JSON document with its object keys sorted.
func canonical(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

// printDiff writes the lines that differ between want and got, prefixed with
// "-" and "+". It returns true if there were any.
func printDiff(w io.Writer, want, got string) bool {
	dmp := diffmatchpatch.New()
	wantChars, gotChars, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(wantChars, gotChars, false), lines)

	changed := false
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}

		changed = true
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line != "" {
				_, _ = fmt.Fprint(w, prefix, line)
			}
		}
	}

	return changed
}
