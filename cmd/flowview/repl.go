package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"flowview/internal/config"
	"flowview/internal/repl"
	"flowview/internal/service"
	"flowview/internal/ui"
)

func replCmd(gf *globalFlags) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "repl [file]",
		Short: "Explore a diagram interactively in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				gf.file = args[0]
			}
			cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}

			historyFile := filepath.Join(filepath.Dir(config.DefaultConfigPath()), "history")
			if err := config.EnsureConfigDir(config.DefaultConfigPath()); err != nil {
				historyFile = ""
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          ui.Brand.Sprint("flowview") + "> ",
				HistoryFile:     historyFile,
				AutoComplete:    repl.Completer(),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return err
			}
			defer rl.Close()
			log.SetOutput(rl.Stderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			h, runHost, err := connectHost(ctx, cfg)
			if err != nil {
				return err
			}

			out := rl.Stdout()
			term := repl.NewTerminal(out)
			term.SetQuiet(quiet)
			loop := service.NewLoop()
			ctrl := service.NewController(h, term, loop, service.NewEventBus(), cfg.Options())
			d := service.NewDispatcher(loop, ctrl)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return loop.Run(gctx) })
			if runHost != nil {
				g.Go(func() error { return runHost(gctx, d) })
			}

			ui.Banner(out, "type 'help' for commands")
			if err := startController(gctx, d, cfg); err != nil {
				return err
			}

			sessionErr := repl.NewSession(d, term, out).Run(gctx, rl)
			cancel()
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if errors.Is(sessionErr, context.Canceled) {
				return nil
			}
			return sessionErr
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not announce renders and selections")
	return cmd
}
