package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowview/internal/config"
	"flowview/internal/ui"
)

func configCmd(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(gf)
				if err != nil {
					return err
				}
				path := config.FindConfigPath()
				if gf.configPath != "" {
					path = gf.configPath
				}
				if path == "" {
					path = ui.Subtle.Sprint("(defaults)")
				}
				fmt.Printf("  %s %s\n", ui.Info.Sprint("file"), path)
				fmt.Printf("  %s\n", cfg.Summary())
				return nil
			},
		},
		configInitCmd(),
	)
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Printf("  %s %s already exists (use --force)\n", ui.WarnIcon(), path)
				return nil
			}
			if err := config.EnsureConfigDir(path); err != nil {
				return err
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Printf("  %s wrote %s\n", ui.StatusIcon(true), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
