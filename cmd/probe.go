// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/New-Earth-Lab/interbus/pkg/interbus"
	"github.com/spf13/cobra"
)

var probeTimeout int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test the connection by waiting for a valid telegram",
	Long: `Wait for any checksum-valid Interbus telegram on the connection.

Invalid bytes are ignored while hunting for a complete frame. Useful for
verifying wiring and baud rate, or connectivity to a WebSocket bridge.

Exit codes:
  0 - Telegram received before timeout
  1 - Timeout reached without a valid telegram
  2 - Connection error`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "probe-timeout", 10, "Seconds to wait for a valid telegram")
}

func runProbe(cmd *cobra.Command, args []string) error {
	t, info, err := openTransport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer t.Close()

	fmt.Printf("Interbus - Probe\n")
	fmt.Printf("Connection: %s\n", info)
	fmt.Printf("Waiting up to %d seconds for a valid telegram...\n\n", probeTimeout)

	telegramCh := make(chan *interbus.Telegram, 1)
	errCh := make(chan error, 1)

	go func() {
		rx := interbus.NewReceiver()
		rx.Reset(nil)
		invalid := 0

		for {
			b, err := t.ReadByte()
			if err != nil {
				if errors.Is(err, interbus.ErrReadTimeout) {
					if rx.State() != interbus.RxHuntingStart {
						rx.Reset(nil)
					}
					continue
				}
				errCh <- err
				return
			}

			state := rx.Feed(b)
			if !state.Terminal() {
				continue
			}
			if state == interbus.RxReady {
				if invalid > 0 {
					fmt.Printf("(skipped %d invalid frames before sync)\n", invalid)
				}
				telegramCh <- rx.Telegram()
				return
			}
			invalid++
			rx.Reset(nil)
		}
	}()

	select {
	case tg := <-telegramCh:
		fmt.Printf("SUCCESS: Received valid telegram\n")
		fmt.Printf("  Type: %s (0x%02X)\n", tg.Type(), byte(tg.Type()))
		fmt.Printf("  Address: 0x%02X\n", tg.Dest())
		fmt.Printf("  Register: 0x%02X\n", tg.Register())
		fmt.Printf("  Payload: %d bytes\n", len(tg.Payload()))
		os.Exit(0)

	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(probeTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid telegram within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	return nil
}
