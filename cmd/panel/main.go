package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"catalogadmin/catalog-panel/internal/config"
	"catalogadmin/catalog-panel/internal/observability"
	"catalogadmin/catalog-panel/internal/panel"
	"catalogadmin/catalog-panel/internal/session"
)

const usage = `Usage: panel [-api <url>] [-state <file>] <command> [args]

Commands:
  login -email <email> [-password <pw>] [-remember=true] [-return <path>]
  logout
  whoami
  menu
  categories list | add <name> | edit <id> <name> | delete <id>
  products list | add [flags] | edit <id> [flags] | delete <id>
`

var errNotLoggedIn = errors.New("not logged in; run: panel login -email <email>")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	panel  *panel.Panel
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.LoadPanel()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("panel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "Backend base URL")
	fs.StringVar(&cfg.StateFile, "state", cfg.StateFile, "Path to the panel state file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("missing command")
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	nav := panel.NewHistoryNavigator(startLocation(cmd, cfg))
	nav.OnChange = func(path string, _ bool) {
		fmt.Fprintf(stderr, "-> %s\n", path)
	}
	p, err := panel.New(cfg, panel.Options{
		Navigator: nav,
		Logger:    observability.NewLoggerTo(stderr, cfg.LogLevel),
	})
	if err != nil {
		return err
	}
	p.Start(ctx)

	c := &cli{panel: p, stdin: stdin, stdout: stdout, stderr: stderr}
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.logout()
	case "whoami":
		return c.whoami()
	case "menu", "help":
		return c.menu()
	case "categories":
		if err := c.requireSession(); err != nil {
			return err
		}
		return c.categories(ctx, rest)
	case "products":
		if err := c.requireSession(); err != nil {
			return err
		}
		return c.products(ctx, rest)
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// startLocation is the page a command acts on, so a session expiry during
// start-up reports the same redirect the browser panel would.
func startLocation(cmd string, cfg config.PanelConfig) string {
	switch cmd {
	case "login":
		return cfg.LoginPath
	case "categories", "products":
		return "/" + cmd
	default:
		return cfg.HomePath
	}
}

func (c *cli) requireSession() error {
	if c.panel.Session.State() != session.Authenticated {
		return errNotLoggedIn
	}
	return nil
}
