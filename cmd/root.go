// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"log/slog"
	"os"

	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Session flags
	masterID  uint8
	timeoutMs int

	configPath string
	verbose    bool

	cfg    = &Config{}
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "interbus",
	Short: "Interbus master CLI",
	Long: `Interbus - a master-side CLI for NKT Photonics laser modules.

Provides one-shot register reads and writes, a passive telegram monitor,
and an interactive register poller over a serial port or a WebSocket
serial bridge.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the INTERBUS_PASSWORD
environment variable, or prompted interactively if not set.

Device arguments accept a numeric module address (decimal or 0x-prefixed hex)
or an alias defined in the [devices] table of the --config file.`,
	Version:           "1.0.0",
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().Uint8VarP(&masterID, "master-id", "m", 0x42, "Master source address")
	rootCmd.PersistentFlags().IntVarP(&timeoutMs, "timeout", "t", 10, "Per-byte read timeout in milliseconds")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// setup configures logging and folds config file values into any flag the
// user did not set explicitly.
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if configPath == "" {
		return nil
	}

	c, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg = c

	flags := cmd.Root().PersistentFlags()
	if !flags.Changed("port") && cfg.Port != "" {
		portName = cfg.Port
	}
	if !flags.Changed("baud") && cfg.Baud != 0 {
		baudRate = cfg.Baud
	}
	if !flags.Changed("master-id") && cfg.MasterID != 0 {
		masterID = cfg.MasterID
	}
	if !flags.Changed("timeout") && cfg.TimeoutMs != 0 {
		timeoutMs = cfg.TimeoutMs
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
