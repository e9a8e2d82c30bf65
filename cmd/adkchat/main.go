// adkchat - command line client for an ADK API server.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hupe1980/adkclient/client"
	"github.com/hupe1980/adkclient/config"
	"github.com/hupe1980/adkclient/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// cli carries the resolved settings shared by all subcommands.
type cli struct {
	configPath string
	baseURL    string
	appName    string
	userID     string

	cfg    *config.Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "adkchat",
		Short: "Talk to agents hosted on an ADK API server",
		Long: `adkchat - command line client for an ADK API server.

It creates sessions, submits turns to /run and prints the text the agent
answers with.

Environment:
  ADK_BASE_URL   Server address (default: http://127.0.0.1:8000)
  ADK_APP_NAME   Agent application (default: multi_tool_agent)
  ADK_USER_ID    User id (default: user_1)
  ADK_TIMEOUT    Per request timeout, e.g. 30s (default: none)
  ADK_LOG_LEVEL  debug, info, warn or error (default: info)
  ADK_TOKEN      Bearer token sent on every call (default: none)
  ADK_RATE_LIMIT Requests per second (default: unlimited)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "API server address")
	root.PersistentFlags().StringVar(&a.appName, "app", "", "Agent application name")
	root.PersistentFlags().StringVar(&a.userID, "user", "", "User id")

	root.AddCommand(a.appsCmd())
	root.AddCommand(a.sessionCmd())
	root.AddCommand(a.artifactCmd())
	root.AddCommand(a.runCmd())
	root.AddCommand(a.chatCmd())
	return root
}

// load resolves the configuration: file, then environment, then flags.
func (a *cli) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Changed("app") {
		cfg.AppName = a.appName
	}
	if flags.Changed("user") {
		cfg.UserID = a.userID
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *cli) client() *client.Client {
	logger := a.cfg.NewLogger(a.errOut).WithComponent("adkchat")
	return client.New(func(o *client.Options) {
		o.BaseURL = a.cfg.BaseURL
		o.HTTPClient = &http.Client{Timeout: a.cfg.Timeout.Duration}
		o.Logger = logger
		o.TokenSource = a.cfg.TokenSource()
		o.Limiter = a.cfg.Limiter()
	})
}

func printResult(w io.Writer, res core.RunResult) {
	for _, t := range res.Texts {
		fmt.Fprintln(w, t)
	}
	if res.TransferToAgent != "" {
		fmt.Fprintf(w, "[transferred to %s]\n", res.TransferToAgent)
	}
	for id := range res.RequestedAuthConfigs {
		fmt.Fprintf(w, "[authorization requested for %s]\n", id)
	}
	for _, name := range sortedKeys(res.ArtifactDelta) {
		fmt.Fprintf(w, "[artifact %s v%d saved]\n", name, res.ArtifactDelta[name])
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "error: %s\n", e.Error())
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
