// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

// Package interbus implements the master side of the Interbus serial
// protocol spoken by NKT Photonics laser modules.
//
// Interbus is a half-duplex request/response protocol: the master frames a
// telegram addressed to a module register, the module answers with a single
// reply telegram. This package provides telegram encoding with byte
// stuffing, CRC validation, the receiver state machine, and a Bus session
// that runs one transaction at a time over a serial port (or any Transport).
package interbus

import "time"

// Protocol framing bytes
const (
	SOT = 0x0D // start of telegram
	EOT = 0x0A // end of telegram
	SOE = 0x5E // start of escape
	ECC = 0x40 // added to an escaped byte on the wire, subtracted on receive
)

// Frame size limits
const (
	// MinBodySize is the smallest de-escaped body that can carry a reply:
	// address + message type + register + 2 checksum bytes.
	MinBodySize = 5

	// DefaultMaxFrameBytes bounds the number of raw bytes one receive
	// attempt will consume before giving up on ever seeing EOT.
	DefaultMaxFrameBytes = 4096
)

// CRC-16/XMODEM configuration
const (
	crcPolynomial = 0x1021
	crcInitial    = 0x0000
)

// Session defaults
const (
	// DefaultMasterID is the source address NKT recommends for a host.
	DefaultMasterID = 0x42

	// DefaultTimeout is the per-byte read timeout applied to the transport.
	DefaultTimeout = 10 * time.Millisecond
)

// MessageType identifies the kind of telegram in the type byte.
type MessageType byte

// Message type values
const (
	MsgNack     MessageType = 0x00 // request rejected
	MsgCRC      MessageType = 0x01 // module saw a checksum failure
	MsgBusy     MessageType = 0x02 // module cannot answer yet
	MsgAck      MessageType = 0x03 // write accepted
	MsgRead     MessageType = 0x04 // read a register
	MsgWrite    MessageType = 0x05 // write a register
	MsgWriteSet MessageType = 0x06 // set bits in a register
	MsgWriteClr MessageType = 0x07 // clear bits in a register
	MsgDatagram MessageType = 0x08 // register contents
	MsgWriteTgl MessageType = 0x09 // toggle bits in a register
	MsgNone     MessageType = 0xFF
)

// IsWrite reports whether the message type carries payload bytes toward the
// module. All other types are sent with an empty payload.
func (m MessageType) IsWrite() bool {
	switch m {
	case MsgWrite, MsgWriteSet, MsgWriteClr, MsgWriteTgl:
		return true
	}
	return false
}

// String returns the protocol name for the message type.
func (m MessageType) String() string {
	switch m {
	case MsgNack:
		return "NACK"
	case MsgCRC:
		return "CRC"
	case MsgBusy:
		return "BUSY"
	case MsgAck:
		return "ACK"
	case MsgRead:
		return "RDCMD"
	case MsgWrite:
		return "WRCMD"
	case MsgWriteSet:
		return "WRSET"
	case MsgWriteClr:
		return "WRCLR"
	case MsgDatagram:
		return "DATAGRAM"
	case MsgWriteTgl:
		return "WRTGL"
	case MsgNone:
		return "NONE"
	}
	return "UNKNOWN"
}
