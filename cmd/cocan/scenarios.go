package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cocan/internal/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List scenario presets",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range scenario.List() {
			fmt.Printf("%s %s\n    %s\n", color.CyanString("%-16s", s.ID), s.Name, s.Description)
		}
	},
}
