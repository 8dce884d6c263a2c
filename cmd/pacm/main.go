package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/hazyhaar/pacm-search/pkg/library"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewMain().Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

func NewMain() *Main { return &Main{} }

// Run parses args, loads the configuration and runs the selected command.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pacm"),
		kong.Description("Search the Article 6.4 document catalogue and its full text."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{"version": version},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pacm --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, found, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	cli.override(cfg)

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if !found {
		logger.Debug("no config file, using defaults", "path", cli.Config)
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Config: cfg,
		Logger: logger,
	}
	return kctx.Run(deps)
}

// openLibrary loads the configured data directory.
func (d *Dependencies) openLibrary() (*library.Library, error) {
	dedupe, err := d.Config.DedupeOptions()
	if err != nil {
		return nil, err
	}
	lib := library.New(d.Config.DataDir, library.Options{Dedupe: dedupe, Logger: d.Logger})
	if err := lib.Load(d.Ctx); err != nil {
		return nil, err
	}
	return lib, nil
}
