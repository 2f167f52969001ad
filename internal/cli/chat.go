package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lovable-tutor/internal/session"
)

const endCommand = "/end"

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a practice conversation (type /end or Ctrl-D to finish)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return runChat(cmd.Context(), a.Session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(ctx context.Context, c *session.Controller, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "💬 Chat with your tutor. Type /end to finish.")

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, endCommand) {
			break
		}

		turn, err := c.Send(ctx, line)
		if err != nil {
			if errors.Is(err, session.ErrSessionEnded) {
				break
			}
			fmt.Fprintf(out, "⚠️ %v\n", err)
			continue
		}
		fmt.Fprintln(out, formatTurn(turn))
	}
	fmt.Fprintln(out)
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	sum, err := c.End(ctx)
	fmt.Fprintln(out, formatSummary(sum))
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}
