// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var writeFormat string

var writeCmd = &cobra.Command{
	Use:   "write <device> <register> <value>",
	Short: "Write a module register",
	Long: `Write one register on a module and wait for its acknowledgement.

The value is encoded per --format before transmission. "hex" takes an even
number of hex digits ("2a00" or "2A 00"); the numeric formats encode the value
little-endian.`,
	Args: cobra.ExactArgs(3),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVarP(&writeFormat, "format", "f", "hex", "Value format: hex, u8, u16, u32, f32, ascii")
}

func runWrite(cmd *cobra.Command, args []string) error {
	dest, err := cfg.ResolveDevice(args[0])
	if err != nil {
		return err
	}
	register, err := parseRegister(args[1])
	if err != nil {
		return err
	}
	value, err := encodeValue(args[2], writeFormat)
	if err != nil {
		return err
	}

	bus, info, err := openBus()
	if err != nil {
		return err
	}
	defer bus.Close()

	logger.Debug("connected", "via", info)

	if err := bus.WriteRegister(dest, register, value); err != nil {
		return fmt.Errorf("write device %#02x register %#02x: %w", dest, register, err)
	}

	fmt.Printf("OK (%d bytes written to register 0x%02X)\n", len(value), register)
	return nil
}

// encodeValue converts a value argument into register payload bytes.
func encodeValue(arg, format string) ([]byte, error) {
	switch format {
	case "hex":
		cleaned := strings.ReplaceAll(arg, " ", "")
		cleaned = strings.TrimPrefix(cleaned, "0x")
		payload, err := hex.DecodeString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("invalid hex value %q: %w", arg, err)
		}
		return payload, nil
	case "u8":
		v, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid u8 value %q: %w", arg, err)
		}
		return []byte{byte(v)}, nil
	case "u16":
		v, err := strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid u16 value %q: %w", arg, err)
		}
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(v))
		return buf, nil
	case "u32":
		v, err := strconv.ParseUint(arg, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid u32 value %q: %w", arg, err)
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(v))
		return buf, nil
	case "f32":
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid f32 value %q: %w", arg, err)
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
		return buf, nil
	case "ascii":
		return []byte(arg), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
