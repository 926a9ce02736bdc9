package cli

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/usecase"
)

// newConfigCommand creates the config command.
func newConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage tasktree configuration files and settings.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigShowCommand(e))
	cmd.AddCommand(newConfigTemplateCommand())
	cmd.AddCommand(newConfigInitCommand(e))

	return cmd
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(e *env) *cobra.Command {
	var ignoreGlobal, ignoreRepo bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display effective configuration after merging all sources.

Shows which config files were loaded and the final merged configuration.
Use --ignore-global or --ignore-repo to exclude a source for debugging.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := e.c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{
				IgnoreGlobal: ignoreGlobal,
				IgnoreRepo:   ignoreRepo,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(w, "[Loaded from]")
			if !ignoreGlobal {
				printConfigSource(w, out.GlobalConfig)
			}
			if !ignoreRepo {
				printConfigSource(w, out.RepoConfig)
			}
			_, _ = fmt.Fprintln(w)

			_, _ = fmt.Fprintln(w, "[Effective Config]")
			return formatEffectiveConfig(w, out.EffectiveConfig)
		},
	}

	cmd.Flags().BoolVar(&ignoreGlobal, "ignore-global", false, "Ignore global configuration")
	cmd.Flags().BoolVar(&ignoreRepo, "ignore-repo", false, "Ignore data directory configuration")

	return cmd
}

func printConfigSource(w io.Writer, info domain.ConfigInfo) {
	if info.Path == "" {
		return
	}
	if info.Exists {
		_, _ = fmt.Fprintf(w, "- %s\n", info.Path)
	} else {
		_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.Path)
	}
}

// formatEffectiveConfig writes cfg as TOML, using the struct's toml tags.
func formatEffectiveConfig(w io.Writer, cfg *domain.Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// newConfigTemplateCommand creates the config template subcommand.
func newConfigTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Output configuration template",
		Long: `Output a configuration file template to stdout.

The template does not depend on existing configuration files and
works even if they are broken.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), domain.RenderConfigTemplate(domain.NewDefaultConfig()))
			return nil
		},
	}
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(e *env) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate configuration file",
		Long: `Generate a configuration file from the template.

By default, creates the data directory configuration at .tasktree/config.toml.
With --global, creates the global configuration at ~/.config/tasktree/config.toml.

Error conditions:
- Target file already exists: error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := e.c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{
				Global: global,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", out.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Generate global configuration")

	return cmd
}
