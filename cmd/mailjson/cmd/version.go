package cmd

import (
	"fmt"

	"github.com/coreos/go-semver/semver"
	"github.com/spf13/cobra"
)

// Version is the version of mailjson. It may be replaced at link time.
var Version = "0.1.0"

func versionCmd() *cobra.Command {
	var require string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of mailjson",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := semver.NewVersion(Version)
			if err != nil {
				return fmt.Errorf("unable to parse build version %q: %w", Version, err)
			}

			if require != "" {
				want, err := semver.NewVersion(require)
				if err != nil {
					return fmt.Errorf("unable to parse --require version %q: %w", require, err)
				}

				if v.LessThan(*want) {
					return fmt.Errorf("mailjson v%s is older than required v%s", v, want)
				}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "mailjson v%s\n", v)
			return err
		},
	}

	cmd.Flags().StringVar(&require, "require", "", "Fail unless mailjson is at least this version")

	return cmd
}
