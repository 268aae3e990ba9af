// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import (
	"fmt"
	"strings"
)

// FormatTelegram formats a decoded telegram into a human-readable line,
// followed by a hex dump of the payload when one is present.
func FormatTelegram(t *Telegram) string {
	timestamp := t.Timestamp().Format("15:04:05.000")

	result := fmt.Sprintf("[%s] %s (0x%02X) addr=0x%02X reg=0x%02X len=%d\n",
		timestamp, t.Type(), byte(t.Type()), t.Dest(), t.Register(), len(t.Payload()))

	if len(t.Payload()) > 0 {
		result += "  payload: " + FormatHex(t.Payload()) + "\n"
	}

	return result
}

// FormatHex renders bytes as space-separated hex, 16 per line.
func FormatHex(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			if i%16 == 0 {
				sb.WriteString("\n           ")
			} else {
				sb.WriteByte(' ')
			}
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}
