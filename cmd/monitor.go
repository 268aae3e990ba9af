// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/New-Earth-Lab/interbus/pkg/interbus"
	"github.com/spf13/cobra"
)

var (
	monitorCapture       string
	monitorStatsInterval int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Passively decode telegrams on the line",
	Long: `Continuously decode and display Interbus telegrams as they arrive.

The receiver runs promiscuously: every checksum-valid telegram is shown, with
decode failures counted and reported. Use --capture to additionally record
decoded telegrams to a CBOR capture file for offline analysis.

Press Ctrl+C to stop; a statistics summary is printed on exit.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().StringVar(&monitorCapture, "capture", "", "Write decoded telegrams to a CBOR capture file")
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 0, "Print a statistics line every N seconds (0 = off)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	t, info, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	var capture *interbus.CaptureWriter
	if monitorCapture != "" {
		f, err := os.Create(monitorCapture)
		if err != nil {
			return fmt.Errorf("failed to create capture file: %w", err)
		}
		defer f.Close()
		capture = interbus.NewCaptureWriter(f)
	}

	fmt.Printf("Interbus - Telegram Monitor\n")
	fmt.Printf("Connection: %s\n", info)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	rx := interbus.NewReceiver()
	rx.Reset(nil)
	stats := interbus.NewStatistics()
	lastStats := time.Now()

	for {
		select {
		case <-sigCh:
			fmt.Printf("\n%s\n", stats.Snapshot())
			return nil
		default:
		}

		b, err := t.ReadByte()
		if err != nil {
			if errors.Is(err, interbus.ErrReadTimeout) {
				// An idle line is normal for a passive monitor. A
				// timeout mid-frame means the sender stalled; count it
				// and resynchronize.
				if rx.State() != interbus.RxHuntingStart {
					stats.Record(rx.Fail(err))
					rx.Reset(nil)
				}
				continue
			}
			stats.Record(rx.Fail(err))
			fmt.Printf("\n%s\n", stats.Snapshot())
			return fmt.Errorf("monitor stopped: %w", err)
		}

		state := rx.Feed(b)
		if state.Terminal() {
			stats.Record(state)
			if state == interbus.RxReady {
				tg := rx.Telegram()
				fmt.Print(interbus.FormatTelegram(tg))
				if capture != nil {
					if err := capture.Write(tg); err != nil {
						return fmt.Errorf("capture write failed: %w", err)
					}
				}
			} else {
				fmt.Printf("[ERROR] %v\n", rx.Err())
			}
			rx.Reset(nil)
		}

		if monitorStatsInterval > 0 && time.Since(lastStats) >= time.Duration(monitorStatsInterval)*time.Second {
			fmt.Printf("-- %s\n", stats.Snapshot())
			lastStats = time.Now()
		}
	}
}
