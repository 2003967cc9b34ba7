package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/trendscan.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".trendscan"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a trendscan configuration file",
		Long: `Init writes a commented .trendscan configuration file.

The generated file lists every option with its default value. Credentials
are not part of it; they are always read from the environment.

Examples:
  # Create .trendscan in the current directory
  trendscan init

  # Create the file at a specific path
  trendscan init -o config/trendscan.yaml

  # Overwrite an existing file
  trendscan init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/trendscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nSet the credentials before the first run:")
	fmt.Fprintln(out, "  export PROXYMESH_USERNAME=... PROXYMESH_PASSWORD=...")
	fmt.Fprintln(out, "  export TWITTER_USERNAME=... TWITTER_PASSWORD=...")
	return nil
}
