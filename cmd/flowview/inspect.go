package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"flowview/internal/codec"
	"flowview/internal/diagram"
	"flowview/internal/domain"
	"flowview/internal/host"
	"flowview/internal/menu"
	"flowview/internal/repl"
	"flowview/internal/ui"
)

// loadModel builds a diagram model from the file given as argument or --file,
// labelled with the configured view flags
func loadModel(gf *globalFlags, args []string) (*diagram.Model, domain.ViewFlags, error) {
	if len(args) > 0 {
		gf.file = args[0]
	}
	cfg, err := loadConfig(gf)
	if err != nil {
		return nil, domain.ViewFlags{}, err
	}
	if cfg.Host.File == "" {
		return nil, domain.ViewFlags{}, fmt.Errorf("no file given")
	}
	snap, err := host.Load(cfg.Host.File)
	if err != nil {
		return nil, domain.ViewFlags{}, err
	}
	flags := cfg.Flags()
	m := diagram.NewModel()
	m.Update(snap, flags)
	return m, flags, nil
}

func renderCmd(gf *globalFlags) *cobra.Command {
	var connected int

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Print the frame a file renders to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadModel(gf, args)
			if err != nil {
				return err
			}

			var visible map[int]struct{}
			marks := diagram.NoMarks()
			if cmd.Flags().Changed("connected") {
				names, ok := diagram.FindComponent(m, connected)
				if !ok {
					return fmt.Errorf("unknown node %d", connected)
				}
				visible = m.ResolveNames(names)
				marks = diagram.MarkNode(m, connected)
			}

			frame := diagram.BuildFrame(m, visible, marks)
			repl.PrintFrame(os.Stdout, frame, marks)
			fmt.Println()
			ui.Subtle.Printf("  %d nodes, %d edges\n", len(frame.Nodes), len(frame.Edges))
			return nil
		},
	}

	cmd.Flags().IntVar(&connected, "connected", 0, "Only show the events connected to this node")
	return cmd
}

func menuCmd(gf *globalFlags) *cobra.Command {
	var prohibited bool

	cmd := &cobra.Command{
		Use:   "menu <id> [file]",
		Short: "Print the context menu of a node",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid node ID %q", args[0])
			}
			m, flags, err := loadModel(gf, args[1:])
			if err != nil {
				return err
			}
			node, ok := m.Node(id)
			if !ok {
				return fmt.Errorf("unknown node %d", id)
			}

			flags.ActionsProhibited = prohibited
			items := menu.Build(node, menu.TopologyOf(m, id), flags, false)
			repl.PrintMenu(os.Stdout, id, items)
			return nil
		},
	}

	cmd.Flags().BoolVar(&prohibited, "prohibited", false, "Build the menu as if actions were prohibited")
	return cmd
}

func componentsCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "components [file]",
		Short: "List the connected components of a diagram",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadModel(gf, args)
			if err != nil {
				return err
			}

			groups := diagram.Components(m)
			rows := make([][]string, 0, len(groups))
			for i, ids := range groups {
				parts := make([]string, len(ids))
				for j, id := range ids {
					parts[j] = strconv.Itoa(id)
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), strconv.Itoa(len(ids)), strings.Join(parts, " ")})
			}
			ui.Table(os.Stdout, []string{"#", "SIZE", "NODES"}, rows)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a flowchart or snapshot file to a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := host.Load(args[0])
			if err != nil {
				return err
			}
			c, err := codec.ForFormat(format)
			if err != nil {
				return err
			}
			return c.Export(snap, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "json", "Output format: json or yaml")
	return cmd
}
