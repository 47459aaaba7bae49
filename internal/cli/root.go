package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/geoset/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The config file is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "geoset maps countries, regions and areas into Balmorel set files",
		Long: `geoset is an editor for geographic hierarchies. Enter the labels of three
tiers (countries, regions, areas), connect each label to its parent in the
next tier, and export the mapping as Balmorel .inc set files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/geoset/config.toml)")

	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
