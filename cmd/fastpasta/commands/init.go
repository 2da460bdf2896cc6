package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/fastpasta/internal/cli/prompt"
	"github.com/marmos91/fastpasta/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := GetConfigFile()
		if path == "" {
			path = config.GetDefaultConfigPath()
		}

		force := initForce
		if !force {
			if _, statErr := os.Stat(path); statErr == nil {
				ok, perr := prompt.ConfirmWithForce(fmt.Sprintf("%s already exists, overwrite?", path), false)
				if perr != nil {
					return fmt.Errorf("confirm overwrite: %w", perr)
				}
				if !ok {
					return fmt.Errorf("configuration file already exists at %s (use --force to overwrite without prompting)", path)
				}
				force = true
			}
		}

		var err error
		if GetConfigFile() != "" {
			err = config.InitConfigToPath(path, force)
		} else {
			path, err = config.InitConfig(force)
		}
		if err != nil {
			return fmt.Errorf("initialize config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
		fmt.Fprintln(cmd.OutOrStdout(), "  1. Edit the configuration file to customize your setup")
		fmt.Fprintf(cmd.OutOrStdout(), "  2. Run a decode/validate pass: fastpasta check <input>\n")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
}
