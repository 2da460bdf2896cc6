// Package commands implements the fastpasta CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/fastpasta/internal/scanner"
	"github.com/marmos91/fastpasta/pkg/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fastpasta",
	Short: "fastpasta - ALPIDE readout stream decoder and validator",
	Long: `fastpasta decodes and validates ALICE ITS/ALPIDE raw readout streams:
RDH headers, CRU data pages, and the per-lane ALPIDE chip protocol words they
carry. It can run a full decode+validate pass over a file, S3 object, or
stdin, or print a human-readable word-by-word listing.

Use "fastpasta [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/fastpasta/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(viewCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}

// s3Options adapts the loaded config's S3 section for scanner.OpenInput.
func s3Options(cfg *config.Config) scanner.S3Options {
	return scanner.S3Options{
		Region:          cfg.Decode.S3.Region,
		Endpoint:        cfg.Decode.S3.Endpoint,
		AccessKeyID:     cfg.Decode.S3.AccessKeyID,
		SecretAccessKey: cfg.Decode.S3.SecretAccessKey,
	}
}
