package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/sells-group/mass/internal/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect or reset the link registry",
}

var registryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print link registry statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.Open(cfg.Registry)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(reg.Stats(), "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	},
}

var registryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the link registry to empty",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.Open(cfg.Registry)
		if err != nil {
			return err
		}
		if err := reg.Clear(); err != nil {
			return err
		}
		cmd.Println("registry cleared")
		return nil
	},
}

func init() {
	registryCmd.AddCommand(registryStatsCmd)
	registryCmd.AddCommand(registryClearCmd)
	rootCmd.AddCommand(registryCmd)
}
