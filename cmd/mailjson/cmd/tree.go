package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mailjson/message"
	"github.com/zostay/go-mailjson/message/walker"
)

func (a *app) treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [file]",
		Short: "Show the part structure of a message document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			tc, err := a.transcoder()
			if err != nil {
				return err
			}

			// the tree is worth showing even when partly decoded
			msg, err := tc.Parse(cmd.Context(), data)
			if msg == nil {
				return err
			}

			walker.AssignSections(&msg.Part)

			w := cmd.OutOrStdout()
			walkErr := walker.Parts(func(depth, _ int, p *message.Part) error {
				return printPart(w, depth, p)
			}).Walk(&msg.Part)
			if walkErr != nil {
				return walkErr
			}

			return err
		},
	}
}

func printPart(w io.Writer, depth int, p *message.Part) error {
	section := p.Section
	if section == "" {
		section = "*"
	}

	desc := []string{section, p.MediaType()}
	switch c := p.Content.(type) {
	case nil:
		desc = append(desc, "(empty)")
	case *message.Text:
		desc = append(desc, fmt.Sprintf("%d chars", len([]rune(c.Text))))
	case *message.Binary:
		d := fmt.Sprintf("%d bytes", c.Len())
		if c.Ref != "" {
			d += " ref=" + c.Ref
		}
		desc = append(desc, d)
	case *message.Reference:
		d := "ref=" + c.ID
		if c.Handle != nil {
			d = fmt.Sprintf("%d bytes %s", c.Handle.Size, d)
		}
		desc = append(desc, d)
	case *message.Multipart:
		desc = append(desc, fmt.Sprintf("%d parts", c.Len()))
	}

	if name := p.AttachmentName(); name != "" {
		desc = append(desc, fmt.Sprintf("%q", name))
	}

	_, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), strings.Join(desc, " "))
	return err
}
