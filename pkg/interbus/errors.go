// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import "errors"

var (
	// ErrTooShort indicates a received body shorter than the minimum viable
	// telegram. Line noise or a collision, not a checksum failure.
	ErrTooShort = errors.New("telegram body too short")

	// ErrChecksumInvalid indicates a frame whose checksum did not verify.
	// The frame is treated as corrupted and is not retried automatically.
	ErrChecksumInvalid = errors.New("telegram checksum invalid")

	// ErrContentMismatch indicates a well-formed, checksum-valid reply whose
	// address, message type, or register differs from the request. Cross-talk
	// or protocol desync.
	ErrContentMismatch = errors.New("reply does not match request")
)

var (
	// ErrReadTimeout indicates that no byte arrived within the configured
	// read timeout. The peer is silent or slow.
	ErrReadTimeout = errors.New("read timeout")

	// ErrTransportLost indicates a non-timeout transport failure. Fatal for
	// the session; the caller must reopen the bus.
	ErrTransportLost = errors.New("transport lost")

	// ErrFrameOverrun indicates that a receive attempt consumed its byte
	// budget without ever seeing EOT.
	ErrFrameOverrun = errors.New("frame exceeds read budget")
)

var (
	// ErrUnexpectedPayload is returned when encoding a non-write message
	// type with a non-empty payload.
	ErrUnexpectedPayload = errors.New("message type carries no payload")

	// ErrBusClosed is returned when a transaction is attempted on a closed bus.
	ErrBusClosed = errors.New("bus closed")

	// ErrPayloadSize indicates a reply payload of unexpected length for a
	// typed register read.
	ErrPayloadSize = errors.New("unexpected payload size")
)
