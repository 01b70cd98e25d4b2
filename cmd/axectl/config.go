package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/axectl/internal/config"
	"github.com/muurk/axectl/internal/ui"
)

var aliasNote string

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(aliasCmd)
	rootCmd.AddCommand(unaliasCmd)
}

// configCmd groups the config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the axectl configuration file",
	Long: `The configuration file holds scan defaults (subnet, host range, probe
timeout, concurrency) and miner aliases. Discovered miners are never stored;
every scan starts fresh.

Command-line flags always override the file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(registry)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolvedConfigPath()
		if err != nil {
			return err
		}
		if err := config.CreateDefaultConfig(path); err != nil {
			return err
		}
		ui.NewPrinter(os.Stdout).PrintSuccess("Configuration created", []ui.Detail{
			{Key: "Path", Value: path},
		})
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolvedConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func resolvedConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// aliasCmd names a miner address, or lists aliases without arguments
var aliasCmd = &cobra.Command{
	Use:   "alias [<address> <name>]",
	Short: "Name a miner so commands accept the name instead of its address",
	Example: `  # Name a miner
  axectl alias 192.168.1.42 garage --note "top shelf"

  # Use the name
  axectl status garage

  # List aliases
  axectl alias`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <address> <name>, got %d argument(s)", len(args))
		}
		return nil
	},
	RunE: runAlias,
}

func init() {
	aliasCmd.Flags().StringVar(&aliasNote, "note", "", "Free-text note stored with the alias")
}

func runAlias(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		addrs := registry.AliasAddresses()
		if len(addrs) == 0 {
			fmt.Fprintln(out, "No aliases configured. Add one with 'axectl alias <address> <name>'")
			return nil
		}
		for _, addr := range addrs {
			a := registry.Aliases[addr]
			if a.Note != "" {
				fmt.Fprintf(out, "%s\t%s\t%s\n", a.Name, addr, a.Note)
			} else {
				fmt.Fprintf(out, "%s\t%s\n", a.Name, addr)
			}
		}
		return nil
	}

	address, name := args[0], args[1]
	if ip := net.ParseIP(address); ip == nil || ip.To4() == nil {
		return fmt.Errorf("invalid miner address %q: expected a dotted IPv4 address", address)
	}
	if existing := registry.ResolveAddress(name); existing != name && existing != address {
		return fmt.Errorf("alias %q is already used for %s", name, existing)
	}

	registry.SetAlias(address, name, aliasNote)
	if err := saveRegistry(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is now known as %s\n", address, name)
	return nil
}

var unaliasCmd = &cobra.Command{
	Use:   "unalias <address|alias>",
	Short: "Remove a miner alias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := resolveTarget(args[0])
		if !registry.RemoveAlias(address) {
			return fmt.Errorf("no alias set for %s", args[0])
		}
		if err := saveRegistry(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed alias for %s\n", address)
		return nil
	},
}
