package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/bsolutions/shes/internal/cli"
	"github.com/bsolutions/shes/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var wired *wiring
	app := &cli.App{
		IsInteractive: func() bool { return isTerminal(os.Stdin) },
		IsTerminal:    func() bool { return isTerminal(os.Stdout) },
	}
	app.Setup = func(fs *pflag.FlagSet) error {
		cfg, err := config.Load(fs)
		if err != nil {
			return err
		}
		wired, err = wire(ctx, app, cfg, os.Stderr)
		return err
	}
	app.Teardown = func() error {
		return wired.Close(context.Background())
	}

	err := cli.NewRootCmd(app).ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	if closeErr := wired.Close(context.Background()); err == nil {
		err = closeErr
	}
	return err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
