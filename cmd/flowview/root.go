package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"flowview/internal/bridge"
	"flowview/internal/config"
	"flowview/internal/host"
	"flowview/internal/service"
	"flowview/internal/ui"
)

var version = "0.3.0"

// errHostClosed stops a session whose remote host went away
var errHostClosed = errors.New("host closed the connection")

type globalFlags struct {
	configPath string
	hostURL    string
	file       string
	noWatch    bool
}

func rootCmd() *cobra.Command {
	var gf globalFlags

	cmd := &cobra.Command{
		Use:   "flowview",
		Short: "flowview - interactive event-flow diagrams",
		Long: ui.Brand.Sprint("flowview") + " - renders event-flow charts and turns gestures into editor commands\n" +
			ui.Subtle.Sprint("Serve the diagram over HTTP, explore it in a terminal, or inspect a flowchart file"),
		Version:      version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("flowview {{ .Version }}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&gf.configPath, "config", "c", "", "Config file (yaml or toml)")
	pf.StringVar(&gf.hostURL, "host-url", "", "Websocket address of the host application")
	pf.StringVarP(&gf.file, "file", "f", "", "Flowchart or snapshot file to serve")
	pf.BoolVar(&gf.noWatch, "no-watch", false, "Do not reload when the file changes")

	cmd.AddCommand(
		serveCmd(&gf),
		replCmd(&gf),
		renderCmd(&gf),
		menuCmd(&gf),
		componentsCmd(&gf),
		exportCmd(),
		configCmd(&gf),
	)
	return cmd
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(gf *globalFlags) (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if gf.configPath != "" {
		cfg, path, err = config.LoadFromPath(gf.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Printf("Loaded config from %s", path)
	}

	if gf.hostURL != "" {
		cfg.Host.BridgeURL = gf.hostURL
		cfg.Host.File = ""
	}
	if gf.file != "" {
		cfg.Host.File = gf.file
		cfg.Host.BridgeURL = ""
	}
	if gf.noWatch {
		cfg.Host.Watch = false
	}
	return cfg, nil
}

// hostRunner keeps a host's notification source going until ctx is done
type hostRunner func(ctx context.Context, n service.Notifications) error

// connectHost opens the configured host. The runner is nil when the host has
// nothing to feed back.
func connectHost(ctx context.Context, cfg *config.Config) (service.Host, hostRunner, error) {
	switch {
	case cfg.Host.BridgeURL != "":
		b, err := bridge.Dial(ctx, cfg.Host.BridgeURL, nil)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Connected to host at %s", cfg.Host.BridgeURL)
		return b, func(ctx context.Context, n service.Notifications) error {
			if err := b.Run(ctx, n); err != nil {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			return errHostClosed
		}, nil

	case cfg.Host.File != "":
		fh := host.NewFileHost(cfg.Host.File)
		fh.SetDebounce(cfg.Timing.WatchDebounce.Duration())
		log.Printf("Serving %s", fh.Path())
		if !cfg.Host.Watch {
			return fh, nil, nil
		}
		return fh, fh.Watch, nil
	}
	return nil, nil, fmt.Errorf("no host configured: pass --file or --host-url")
}

// startController applies the configured view flags and performs the initial
// load
func startController(ctx context.Context, d *service.Dispatcher, cfg *config.Config) error {
	flags := cfg.Flags()
	return d.Do(ctx, func(c *service.Controller) {
		c.SetEventNamesVisible(flags.ShowEventNames)
		c.SetEventParamsVisible(flags.ShowParams)
		c.Start()
	})
}
