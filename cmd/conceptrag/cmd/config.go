package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/concept-rag/conceptrag/internal/config"
	"github.com/concept-rag/conceptrag/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user/project configuration",
		Long: `Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/conceptrag/config.yaml)
  3. Project config (.conceptrag.yaml)
  4. Environment variables (CONCEPTRAG_*)`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the user configuration file with default values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing user configuration")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool
	var source string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, defaults")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the user configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	path := config.GetUserConfigPath()

	if config.UserConfigExists() && !force {
		out.Warning("User configuration already exists")
		out.Statusf("📁", "Location: %s", path)
		out.Status("💡", "Use --force to overwrite it")
		return nil
	}

	if err := os.MkdirAll(config.GetUserConfigDir(), 0755); err != nil {
		return fmt.Errorf("config init: create config directory: %w", err)
	}
	if err := config.NewConfig().WriteYAML(path); err != nil {
		return fmt.Errorf("config init: write config: %w", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var cfg *config.Config
	var sourceDesc string

	switch source {
	case "merged":
		root, err := config.FindProjectRoot(".")
		if err != nil {
			root, _ = os.Getwd()
		}
		cfg, err = config.Load(root)
		if err != nil {
			return fmt.Errorf("config show: %w", err)
		}
		sourceDesc = "merged (defaults + user + project + env)"

	case "user":
		if !config.UserConfigExists() {
			out.Warning("No user configuration file found")
			out.Status("💡", "Run 'conceptrag config init' to create one")
			return nil
		}
		userCfg, err := config.LoadUserConfig()
		if err != nil {
			return fmt.Errorf("config show: %w", err)
		}
		cfg = userCfg
		sourceDesc = fmt.Sprintf("user (%s)", config.GetUserConfigPath())

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return fmt.Errorf("config show: invalid source %q (use: merged, user, defaults)", source)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Newline()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config show: marshal: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
