// Package schema serializes a tool's command tree so agents and wrappers can
// discover flags without scraping help text.
package schema

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type Command struct {
	Path        string    `json:"path"`
	Use         string    `json:"use"`
	Short       string    `json:"short"`
	Aliases     []string  `json:"aliases,omitempty"`
	Flags       []Flag    `json:"flags,omitempty"`
	GlobalFlags []Flag    `json:"global_flags,omitempty"`
	Subcommands []Command `json:"subcommands,omitempty"`
}

type Flag struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Type      string `json:"type"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
}

// For resolves commandPath (space-separated) under root and serializes the
// subtree. An empty path serializes the whole tool.
func For(root *cobra.Command, commandPath string) (Command, error) {
	cmd := root
	for _, part := range strings.Fields(strings.TrimSpace(commandPath)) {
		next := findSubcommand(cmd, part)
		if next == nil {
			return Command{}, fmt.Errorf("command not found: %s", commandPath)
		}
		cmd = next
	}

	s := serialize(cmd)
	s.GlobalFlags = collect(root.PersistentFlags())
	return s, nil
}

func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
		for _, alias := range c.Aliases {
			if alias == name {
				return c
			}
		}
	}
	return nil
}

func serialize(cmd *cobra.Command) Command {
	s := Command{
		Path:    strings.TrimSpace(cmd.CommandPath()),
		Use:     cmd.Use,
		Short:   cmd.Short,
		Aliases: cmd.Aliases,
		Flags:   collect(cmd.NonInheritedFlags()),
	}
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" {
			continue
		}
		s.Subcommands = append(s.Subcommands, serialize(sub))
	}
	return s
}

func collect(set *pflag.FlagSet) []Flag {
	items := []Flag{}
	set.VisitAll(func(f *pflag.Flag) {
		items = append(items, Flag{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Type:      f.Value.Type(),
			Usage:     f.Usage,
			Default:   f.DefValue,
		})
	})
	return items
}
