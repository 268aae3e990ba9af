// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"fmt"

	"github.com/New-Earth-Lab/interbus/pkg/interbus"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := interbus.ListPorts()
		if err != nil {
			return fmt.Errorf("failed to enumerate serial ports: %w", err)
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
