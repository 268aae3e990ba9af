// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/New-Earth-Lab/interbus/pkg/interbus"
	"github.com/spf13/cobra"
)

var readFormat string

var readCmd = &cobra.Command{
	Use:   "read <device> <register>",
	Short: "Read a module register",
	Long: `Read one register from a module and print its value.

The register payload is printed as hex by default; --format selects a typed
decoding of the little-endian payload instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVarP(&readFormat, "format", "f", "hex", "Output format: hex, u8, u16, u32, f32, ascii")
}

func runRead(cmd *cobra.Command, args []string) error {
	dest, err := cfg.ResolveDevice(args[0])
	if err != nil {
		return err
	}
	register, err := parseRegister(args[1])
	if err != nil {
		return err
	}

	bus, info, err := openBus()
	if err != nil {
		return err
	}
	defer bus.Close()

	logger.Debug("connected", "via", info)

	payload, err := bus.ReadRegister(dest, register)
	if err != nil {
		return fmt.Errorf("read device %#02x register %#02x: %w", dest, register, err)
	}

	out, err := formatPayload(payload, readFormat)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// formatPayload renders a register payload in the requested format.
func formatPayload(payload []byte, format string) (string, error) {
	switch format {
	case "hex":
		return interbus.FormatHex(payload), nil
	case "u8":
		if len(payload) < 1 {
			return "", fmt.Errorf("payload too short for u8: %d bytes", len(payload))
		}
		return fmt.Sprintf("%d", payload[0]), nil
	case "u16":
		if len(payload) < 2 {
			return "", fmt.Errorf("payload too short for u16: %d bytes", len(payload))
		}
		return fmt.Sprintf("%d", binary.LittleEndian.Uint16(payload)), nil
	case "u32":
		if len(payload) < 4 {
			return "", fmt.Errorf("payload too short for u32: %d bytes", len(payload))
		}
		return fmt.Sprintf("%d", binary.LittleEndian.Uint32(payload)), nil
	case "f32":
		if len(payload) < 4 {
			return "", fmt.Errorf("payload too short for f32: %d bytes", len(payload))
		}
		return fmt.Sprintf("%g", math.Float32frombits(binary.LittleEndian.Uint32(payload))), nil
	case "ascii":
		return strings.TrimRight(string(payload), "\x00"), nil
	}
	return "", fmt.Errorf("unknown format %q", format)
}
