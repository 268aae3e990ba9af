// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import "time"

// Telegram represents one logical Interbus telegram.
//
// Outbound telegrams carry both a destination and a source address. Reply
// telegrams carry only the responding module's address in the first body
// byte, so Source is zero on decoded telegrams.
type Telegram struct {
	dest      byte
	source    byte
	msgType   MessageType
	register  byte
	payload   []byte
	timestamp time.Time
}

// NewTelegram creates a telegram with the given fields
func NewTelegram(dest, source byte, msgType MessageType, register byte, payload []byte) *Telegram {
	return &Telegram{
		dest:      dest,
		source:    source,
		msgType:   msgType,
		register:  register,
		payload:   payload,
		timestamp: time.Now(),
	}
}

// Dest returns the telegram's destination module address
func (t *Telegram) Dest() byte {
	return t.dest
}

// Source returns the telegram's source address (zero on decoded replies)
func (t *Telegram) Source() byte {
	return t.source
}

// Type returns the telegram's message type
func (t *Telegram) Type() MessageType {
	return t.msgType
}

// Register returns the telegram's register id
func (t *Telegram) Register() byte {
	return t.register
}

// Payload returns the telegram's payload bytes
func (t *Telegram) Payload() []byte {
	return t.payload
}

// Timestamp returns the telegram's construction or decode timestamp
func (t *Telegram) Timestamp() time.Time {
	return t.timestamp
}
