// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds the optional TOML config file: connection defaults plus a
// table of device aliases.
//
//	port = "/dev/ttyUSB0"
//	baud = 115200
//	master_id = 66
//	timeout_ms = 10
//
//	[devices]
//	laser = 15
//	booster = 0x11
type Config struct {
	Port      string           `toml:"port"`
	Baud      int              `toml:"baud"`
	MasterID  uint8            `toml:"master_id"`
	TimeoutMs int              `toml:"timeout_ms"`
	Devices   map[string]uint8 `toml:"devices"`
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (*Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return &c, nil
}

// ResolveDevice maps a device argument to a module address: an alias from
// the config's [devices] table, or a numeric literal (decimal or 0x hex).
func (c *Config) ResolveDevice(arg string) (byte, error) {
	if c != nil {
		if id, ok := c.Devices[arg]; ok {
			return id, nil
		}
	}

	v, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown device %q: not a configured alias or a module address", arg)
	}
	return byte(v), nil
}

// parseRegister parses a register argument (decimal or 0x hex).
func parseRegister(arg string) (byte, error) {
	v, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register %q: %w", arg, err)
	}
	return byte(v), nil
}
