package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/milkdragon/sitesearch/configs"
	"github.com/milkdragon/sitesearch/internal/config"
	"github.com/milkdragon/sitesearch/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the user and site configuration files.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config (~/.config/sitesearch/config.yaml)
  3. Site config (.sitesearch.yaml in the site root)
  4. Environment variables (SITESEARCH_*)`,
		Example: `  # Create user config from template
  sitesearch config init

  # Create .sitesearch.yaml in the site root
  sitesearch config init --site

  # Show effective configuration
  sitesearch config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force bool
		site  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from a template",
		Long: `Create the user configuration file, or with --site the site's
.sitesearch.yaml, from the built-in template.

With --force an existing user config is backed up before it is replaced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if site {
				return runConfigInitSite(cmd, force)
			}
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	cmd.Flags().BoolVar(&site, "site", false, "Write .sitesearch.yaml in the site root instead")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the configuration after merging defaults, the user config, the site config and the environment.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Statusf("📁", "Location: %s", configPath)
			out.Newline()
			out.Status("💡", "Use --force to replace it (a backup is kept)")
			return nil
		}
		backup, err := config.BackupUserConfig()
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
		out.Statusf("💾", "Backup: %s", backup)
	}

	if err := os.MkdirAll(config.GetUserConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", configPath)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Set site.base_url to your blog's address")
	out.Status("", "  2. Run 'sitesearch config show' to verify")
	return nil
}

func runConfigInitSite(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	dir := "."
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		dir = f.Value.String()
	}
	root, err := config.FindSiteRoot(dir)
	if err != nil {
		return err
	}
	path := filepath.Join(root, config.ProjectConfigName)

	if _, err := os.Stat(path); err == nil && !force {
		out.Warning("Site configuration already exists")
		out.Statusf("📁", "Location: %s", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(configs.SiteConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created site configuration")
	out.Statusf("📁", "Location: %s", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
