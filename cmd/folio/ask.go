package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/engine"
)

var (
	askRole    string
	askSession string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant from the terminal",
	Long: `Ask answers a single question given as arguments. Without arguments it
reads one question per line from stdin until EOF, keeping one session.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askRole, "role", "r", string(core.RoleCasualVisitor), "visitor role (id or display name)")
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session id (default: a fresh id)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := askSession
	if sessionID == "" {
		sessionID = core.NewID()
	}

	out := cmd.OutOrStdout()

	if len(args) > 0 {
		return ask(ctx, a, out, sessionID, strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if err := ask(ctx, a, out, sessionID, q); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func ask(ctx context.Context, a *app, out io.Writer, sessionID, query string) error {
	res, err := a.folio.Chat(ctx, sessionID, askRole, query)
	if err != nil && res == nil {
		return err
	}
	printTurn(out, res)
	return err
}

func printTurn(out io.Writer, res *engine.TurnResult) {
	fmt.Fprintln(out, res.Answer)
	if len(res.FollowUps) > 0 {
		fmt.Fprintln(out)
		for _, f := range res.FollowUps {
			fmt.Fprintf(out, "  > %s\n", f)
		}
	}
	for _, a := range res.Actions {
		if a.Kind.HasSideEffect() {
			fmt.Fprintf(out, "  [%s: %s]\n", a.Kind, a.Status)
		}
	}
}
