package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hupe1980/adkclient/client"
	"github.com/hupe1980/adkclient/core"
	"github.com/hupe1980/adkclient/runner"
	"github.com/hupe1980/adkclient/session"
)

// appsCmd: adkchat apps
func (a *cli) appsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List agent applications on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apps, err := a.client().ListApps(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range apps {
				fmt.Fprintln(a.out, name)
			}
			return nil
		},
	}
}

// sessionCmd: adkchat session create|get|list|delete
func (a *cli) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage sessions",
	}

	var id string
	var state []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := parseState(state)
			if err != nil {
				return err
			}
			s, err := a.client().CreateSession(cmd.Context(), a.cfg.AppName, a.cfg.UserID, client.CreateSessionOptions{SessionID: id, State: st})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, s.String())
			return nil
		},
	}
	create.Flags().StringVar(&id, "id", "", "Session id (default: server assigned)")
	create.Flags().StringArrayVar(&state, "state", nil, "Initial state entry key=value (repeatable)")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a session and its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client().GetSession(cmd.Context(), a.cfg.AppName, a.cfg.UserID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, s.String())
			for _, ev := range s.Events {
				for _, t := range core.ExtractText([]core.Event{ev}) {
					fmt.Fprintf(a.out, "  %s: %s\n", ev.Author, t)
				}
			}
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := a.client().ListSessions(cmd.Context(), a.cfg.AppName, a.cfg.UserID)
			if err != nil {
				return err
			}
			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"ID", "Last Update", "State Keys"})
			for _, s := range sessions {
				tw.AppendRow(table.Row{s.ID, formatUpdate(s.LastUpdateTime), len(s.State)})
			}
			fmt.Fprintln(a.out, tw.Render())
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client().DeleteSession(cmd.Context(), a.session(args[0]))
		},
	}

	cmd.AddCommand(create, get, list, del)
	return cmd
}

// artifactCmd: adkchat artifact list|get
func (a *cli) artifactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Inspect artifacts saved in a session",
	}

	list := &cobra.Command{
		Use:   "list <session-id>",
		Short: "List artifact names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.client().ListArtifacts(cmd.Context(), a.session(args[0]))
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(a.out, name)
			}
			return nil
		},
	}

	version := client.LatestVersion
	get := &cobra.Command{
		Use:   "get <session-id> <name>",
		Short: "Print one artifact version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client().LoadArtifact(cmd.Context(), a.session(args[0]), args[1], version)
			if err != nil {
				return err
			}
			if t, ok := core.PartText(p); ok {
				fmt.Fprintln(a.out, t)
				return nil
			}
			raw, err := core.EncodePart(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(raw))
			return nil
		},
	}
	get.Flags().IntVar(&version, "version", client.LatestVersion, "Version to load (default: latest)")

	cmd.AddCommand(list, get)
	return cmd
}

// runCmd: adkchat run <text...>
func (a *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <text...>",
		Short: "Send one message in a throwaway session",
		Long: `Run creates a session, sends the message, prints the answer and
deletes the session again.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			r := a.newRunner()
			if _, err := r.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if stopErr := r.Stop(ctx); stopErr != nil && err == nil {
					err = stopErr
				}
			}()

			res, err := r.Send(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printResult(a.out, res)
			return res.Err()
		},
	}
}

// chatCmd: adkchat chat
func (a *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive conversation",
		Long: `Chat opens a session and sends every typed line as a turn.

  /<n>    resend the n-th fragment of the last answer
  /quit   end the session and exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			r := a.newRunner()
			s, err := r.Start(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "started %s\n", s.String())

			scanner := bufio.NewScanner(a.in)
			for {
				fmt.Fprint(a.out, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/quit" {
					break
				}

				var res core.RunResult
				if n, ok := choiceIndex(line); ok {
					res, err = r.Choose(ctx, n-1)
				} else {
					res, err = r.Send(ctx, line)
				}
				if errors.Is(err, runner.ErrNoSuchChoice) {
					fmt.Fprintf(a.out, "no choice %s, have %d\n", line, len(r.Choices()))
					continue
				}
				if err != nil {
					fmt.Fprintf(a.out, "error: %v\n", err)
					continue
				}
				printResult(a.out, res)
				if choices := r.Choices(); len(choices) > 1 {
					for i, c := range choices {
						fmt.Fprintf(a.out, "  /%d %s\n", i+1, c)
					}
				}
			}
			if err := scanner.Err(); err != nil {
				_ = r.Stop(ctx)
				return err
			}
			if err := r.Stop(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "session closed")
			return nil
		},
	}
}

// session names an existing session of the configured app and user.
func (a *cli) session(id string) core.Session {
	return core.Session{ID: id, AppName: a.cfg.AppName, UserID: a.cfg.UserID}
}

func (a *cli) newRunner() *runner.Runner {
	c := a.client()
	logger := a.cfg.NewLogger(a.errOut).WithComponent("runner")
	m := session.NewManager(c, func(o *session.Options) { o.Logger = logger })
	return runner.New(m, c, func(o *runner.Options) {
		o.AppName = a.cfg.AppName
		o.UserID = a.cfg.UserID
		o.Logger = logger
	})
}

// formatUpdate renders a server timestamp (seconds since the epoch).
func formatUpdate(ts float64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(0, int64(ts*float64(time.Second))).UTC().Format(time.RFC3339)
}

// choiceIndex parses "/<n>" with n >= 1.
func choiceIndex(line string) (int, bool) {
	if !strings.HasPrefix(line, "/") {
		return 0, false
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseState turns key=value entries into a state map. Booleans and numbers
// are stored typed, anything else as a string.
func parseState(entries []string) (map[string]any, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	state := make(map[string]any, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid state entry %q: want key=value", e)
		}
		switch {
		case v == "true" || v == "false":
			state[k] = v == "true"
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				state[k] = f
			} else {
				state[k] = v
			}
		}
	}
	return state, nil
}
