package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"flowview/internal/handler"
	"flowview/internal/hub"
	"flowview/internal/service"
)

func serveCmd(gf *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram over HTTP and Server-Sent Events",
		Long: `Run the diagram controller behind an HTTP API. Frames, transforms and
selection marks stream to layout engines on /events; gestures, menu choices and
host notifications arrive on /api.

  flowview serve --file village.yaml
  flowview serve --host-url ws://localhost:4000/diagram --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log.Printf("Starting flowview server: %s", cfg.Summary())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			h, runHost, err := connectHost(ctx, cfg)
			if err != nil {
				return err
			}

			bus := service.NewEventBus()
			sseHub := hub.New()
			surface := hub.NewRenderer(sseHub)
			loop := service.NewLoop()
			ctrl := service.NewController(h, surface, loop, bus, cfg.Options())
			d := service.NewDispatcher(loop, ctrl)

			mux := http.NewServeMux()
			handler.NewDiagramHandler(d, surface).Routes(mux)
			mux.Handle("GET /events", sseHub)

			server := &http.Server{
				Addr:        cfg.Server.Addr,
				Handler:     handler.Chain(mux, handler.Recover, handler.CORS, handler.Logger),
				ReadTimeout: 10 * time.Second,
				IdleTimeout: 60 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return loop.Run(gctx) })
			g.Go(func() error {
				sseHub.Run(gctx)
				return nil
			})
			g.Go(func() error {
				sseHub.Forward(gctx, bus)
				return nil
			})
			if runHost != nil {
				g.Go(func() error { return runHost(gctx, d) })
			}
			g.Go(func() error {
				log.Printf("Server listening on %s", cfg.Server.Addr)
				if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Println("Shutting down server...")
				sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
				defer cancel()
				return server.Shutdown(sctx)
			})

			if err := startController(gctx, d, cfg); err != nil {
				log.Printf("Controller did not start: %v", err)
			}

			err = g.Wait()
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			log.Println("Server stopped")
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config, :3000)")
	return cmd
}
