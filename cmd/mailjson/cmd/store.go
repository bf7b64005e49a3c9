package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mailjson/resolver"
)

func (a *app) storeCmd() *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the binary store that {\"ref\": id} bodies are read from",
	}

	var contentType string
	putCmd := &cobra.Command{
		Use:   "put [file]",
		Short: "Add binary data to the store and print its id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			s, err := a.openStore(true)
			if err != nil {
				return err
			}

			id, err := s.Put(cmd.Context(), data, contentType)
			if err != nil {
				return err
			}

			a.logger.Info("stored binary", "id", id, "size", len(data))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	putCmd.Flags().StringVarP(&contentType, "type", "t", "application/octet-stream", "Media type of the data")

	var output string
	getCmd := &cobra.Command{
		Use:   "get id",
		Short: "Write binary data from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(false)
			if err != nil {
				return err
			}

			if s == nil {
				return fmt.Errorf("binary %q: %w", args[0], resolver.ErrNotFound)
			}

			rc, err := s.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer func() { _ = rc.Close() }()

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			_, err = io.Copy(w, rc)
			return err
		},
	}
	getCmd.Flags().StringVarP(&output, "output", "o", "", "File to write to instead of standard output")

	rmCmd := &cobra.Command{
		Use:   "rm id",
		Short: "Remove binary data from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(false)
			if err != nil || s == nil {
				return err
			}

			removed, err := s.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !removed {
				a.logger.Warn("binary was not in the store", "id", args[0])
			}
			return nil
		},
	}

	storeCmd.AddCommand(putCmd, getCmd, rmCmd)
	return storeCmd
}
