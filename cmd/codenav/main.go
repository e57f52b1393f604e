package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dusk-indust/codenav/internal/config"
	"github.com/dusk-indust/codenav/internal/lsp"
	"github.com/dusk-indust/codenav/internal/mcptools"
	"github.com/dusk-indust/codenav/internal/session"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ProjectRoot string
	ServerCmd   string
	LanguageID  string
	SettleMs    int
	HTTPAddr    string
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

// Defaults when neither flags nor codenav.yml say otherwise.
var defaultServerCommand = []string{"typescript-language-server", "--stdio"}

const (
	defaultLanguageID = "typescript"
	shutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("codenav", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "path to the target project")
	fs.StringVar(&flags.ServerCmd, "server-cmd", "", "language server command (space-separated, overrides codenav.yml)")
	fs.StringVar(&flags.LanguageID, "language-id", "", "language identifier sent with opened documents")
	fs.IntVar(&flags.SettleMs, "settle-ms", 0, "delay in milliseconds between opening a document and querying it")
	fs.StringVar(&flags.HTTPAddr, "http", "", "serve MCP over HTTP at this address instead of stdio")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	root, err := filepath.Abs(flags.ProjectRoot)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	command := cfg.Server.Command
	if flags.ServerCmd != "" {
		command = strings.Fields(flags.ServerCmd)
	}
	if len(command) == 0 {
		command = defaultServerCommand
	}

	languageID := cfg.Server.LanguageID
	if flags.LanguageID != "" {
		languageID = flags.LanguageID
	}
	if languageID == "" {
		languageID = defaultLanguageID
	}

	settle := session.DefaultSettleDelay
	switch {
	case flags.SettleMs > 0:
		settle = time.Duration(flags.SettleMs) * time.Millisecond
	case cfg.SettleDelayMs > 0:
		settle = time.Duration(cfg.SettleDelayMs) * time.Millisecond
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := lsp.NewClient(command, root)
	if err := client.Start(ctx); err != nil {
		return err
	}
	defer client.Stop(context.Background(), shutdownTimeout)

	coord := session.New(client, languageID, session.WithSettleDelay(settle))
	svc := mcptools.NewNavService(coord)
	svc.SetExcludeDirs(cfg.ExcludeDirs)

	if flags.HTTPAddr != "" {
		return mcptools.RunHTTP(ctx, svc, flags.HTTPAddr)
	}
	return mcptools.RunStdio(ctx, svc)
}
