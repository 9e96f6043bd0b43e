package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"loan-simulator/config"
)

func newConfigCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configFile(root)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", configFile(root))
			return toml.NewEncoder(out).Encode(cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func configFile(root *rootFlags) string {
	if root.configPath != "" {
		return root.configPath
	}
	return config.ConfigPath()
}
