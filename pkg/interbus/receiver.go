// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import (
	"errors"
	"fmt"
	"time"
)

// RxState is the state the receiver occupies during one receive attempt.
// Every state except RxHuntingStart and RxHuntingEnd is terminal.
type RxState int

// Receiver states
const (
	RxHuntingStart RxState = iota // discarding bytes until SOT
	RxHuntingEnd                  // accumulating body bytes until EOT
	RxReady                       // valid, matching telegram received
	RxContentMismatch             // valid telegram for the wrong address/type/register
	RxChecksumInvalid             // frame failed checksum verification
	RxTooShort                    // body below the minimum viable length
	RxReadTimeout                 // transport read timed out
	RxTransportLost               // transport failed with a non-timeout error
)

// Terminal reports whether the state ends the receive attempt.
func (s RxState) Terminal() bool {
	return s != RxHuntingStart && s != RxHuntingEnd
}

// String returns a human-readable name for the state.
func (s RxState) String() string {
	switch s {
	case RxHuntingStart:
		return "hunting-start"
	case RxHuntingEnd:
		return "hunting-end"
	case RxReady:
		return "ready"
	case RxContentMismatch:
		return "content-mismatch"
	case RxChecksumInvalid:
		return "checksum-invalid"
	case RxTooShort:
		return "too-short"
	case RxReadTimeout:
		return "read-timeout"
	case RxTransportLost:
		return "transport-lost"
	}
	return "unknown"
}

// Expect describes the reply one receive attempt should accept: the module
// address, message type, and register of the request that triggered it.
type Expect struct {
	Address  byte
	Type     MessageType
	Register byte
}

// Receiver reassembles telegrams from a raw byte stream, one byte at a time.
//
// It holds no reference to any transport: the caller reads bytes and feeds
// them in via Feed, reporting read failures via Fail. This keeps every
// transition testable without I/O. A Receiver is armed for one attempt with
// Reset and is not safe for concurrent use.
type Receiver struct {
	state   RxState
	expect  *Expect
	body    []byte
	escaped bool
	readErr error
}

// NewReceiver creates a receiver in the initial hunting state.
func NewReceiver() *Receiver {
	return &Receiver{
		state: RxHuntingStart,
		body:  make([]byte, 0, 64),
	}
}

// Reset arms the receiver for one receive attempt. A nil expect puts the
// receiver in promiscuous mode: any checksum-valid telegram is accepted,
// which is what a passive monitor wants. The body accumulator is reused,
// not reallocated.
func (r *Receiver) Reset(expect *Expect) {
	r.state = RxHuntingStart
	r.expect = expect
	r.body = r.body[:0]
	r.escaped = false
	r.readErr = nil
}

// State returns the receiver's current state.
func (r *Receiver) State() RxState {
	return r.state
}

// Feed advances the state machine by one received byte and returns the
// resulting state. Feeding a terminal state is a no-op.
func (r *Receiver) Feed(b byte) RxState {
	switch r.state {
	case RxHuntingStart:
		if b == SOT {
			r.body = r.body[:0]
			r.escaped = false
			r.state = RxHuntingEnd
		}

	case RxHuntingEnd:
		switch {
		case b == EOT:
			// EOT always closes the frame, even with an escape pending:
			// no escaped value ever lands on the delimiter.
			r.state = r.closeFrame()
		case b == SOE && !r.escaped:
			r.escaped = true
		default:
			if r.escaped {
				b -= ECC
				r.escaped = false
			}
			r.body = append(r.body, b)
		}
	}
	return r.state
}

// Fail ends the receive attempt with a transport read failure, classifying
// it as a timeout or a lost transport.
func (r *Receiver) Fail(err error) RxState {
	r.readErr = err
	if errors.Is(err, ErrReadTimeout) {
		r.state = RxReadTimeout
	} else {
		r.state = RxTransportLost
	}
	return r.state
}

// closeFrame classifies a completed body. Length is checked before the
// checksum so that garbage is reported as garbage, not as corruption.
func (r *Receiver) closeFrame() RxState {
	if len(r.body) < MinBodySize {
		return RxTooShort
	}
	if !VerifyChecksum(r.body) {
		return RxChecksumInvalid
	}
	if r.expect != nil {
		if r.body[0] != r.expect.Address ||
			MessageType(r.body[1]) != r.expect.Type ||
			r.body[2] != r.expect.Register {
			return RxContentMismatch
		}
	}
	return RxReady
}

// Payload returns the received payload (body minus the address, type,
// register, and checksum bytes). Valid only in RxReady; the slice aliases
// the receiver's buffer and is invalidated by the next Reset.
func (r *Receiver) Payload() []byte {
	if r.state != RxReady {
		return nil
	}
	return r.body[3 : len(r.body)-2]
}

// Telegram returns a copy of the received telegram. Valid only in RxReady.
func (r *Receiver) Telegram() *Telegram {
	if r.state != RxReady {
		return nil
	}
	return &Telegram{
		dest:      r.body[0],
		msgType:   MessageType(r.body[1]),
		register:  r.body[2],
		payload:   append([]byte(nil), r.Payload()...),
		timestamp: time.Now(),
	}
}

// Err maps a terminal state onto the error taxonomy. It returns nil for
// RxReady and for the hunting states. Read failures return the error passed
// to Fail, preserving the transport's detail.
func (r *Receiver) Err() error {
	switch r.state {
	case RxContentMismatch:
		return ErrContentMismatch
	case RxChecksumInvalid:
		return ErrChecksumInvalid
	case RxTooShort:
		return ErrTooShort
	case RxReadTimeout:
		switch {
		case r.readErr == nil:
			return ErrReadTimeout
		case errors.Is(r.readErr, ErrReadTimeout):
			return r.readErr
		default:
			return fmt.Errorf("%w: %w", ErrReadTimeout, r.readErr)
		}
	case RxTransportLost:
		switch {
		case r.readErr == nil:
			return ErrTransportLost
		case errors.Is(r.readErr, ErrTransportLost):
			return r.readErr
		default:
			return fmt.Errorf("%w: %w", ErrTransportLost, r.readErr)
		}
	}
	return nil
}
