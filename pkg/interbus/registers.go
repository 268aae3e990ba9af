// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Typed register access. NKT modules store register values little-endian;
// these helpers wrap ReadRegister/WriteRegister with the conversions a
// caller would otherwise repeat at every call site.

// ReadU8 reads a register holding a single byte.
func (b *Bus) ReadU8(dest, register byte) (uint8, error) {
	p, err := b.ReadRegister(dest, register)
	if err != nil {
		return 0, err
	}
	if len(p) < 1 {
		return 0, fmt.Errorf("%w: got %d bytes, want at least 1", ErrPayloadSize, len(p))
	}
	return p[0], nil
}

// ReadU16 reads a register holding a little-endian 16-bit value.
func (b *Bus) ReadU16(dest, register byte) (uint16, error) {
	p, err := b.ReadRegister(dest, register)
	if err != nil {
		return 0, err
	}
	if len(p) < 2 {
		return 0, fmt.Errorf("%w: got %d bytes, want at least 2", ErrPayloadSize, len(p))
	}
	return binary.LittleEndian.Uint16(p), nil
}

// ReadU32 reads a register holding a little-endian 32-bit value.
func (b *Bus) ReadU32(dest, register byte) (uint32, error) {
	p, err := b.ReadRegister(dest, register)
	if err != nil {
		return 0, err
	}
	if len(p) < 4 {
		return 0, fmt.Errorf("%w: got %d bytes, want at least 4", ErrPayloadSize, len(p))
	}
	return binary.LittleEndian.Uint32(p), nil
}

// ReadF32 reads a register holding a little-endian IEEE 754 float.
func (b *Bus) ReadF32(dest, register byte) (float32, error) {
	bits, err := b.ReadU32(dest, register)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadString reads a register holding ASCII text. Trailing NUL padding is
// stripped.
func (b *Bus) ReadString(dest, register byte) (string, error) {
	p, err := b.ReadRegister(dest, register)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(p), "\x00"), nil
}

// WriteU8 writes a single-byte register value.
func (b *Bus) WriteU8(dest, register byte, value uint8) error {
	return b.WriteRegister(dest, register, []byte{value})
}

// WriteU16 writes a little-endian 16-bit register value.
func (b *Bus) WriteU16(dest, register byte, value uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], value)
	return b.WriteRegister(dest, register, buf[:])
}

// WriteU32 writes a little-endian 32-bit register value.
func (b *Bus) WriteU32(dest, register byte, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	return b.WriteRegister(dest, register, buf[:])
}

// WriteF32 writes a little-endian IEEE 754 float register value.
func (b *Bus) WriteF32(dest, register byte, value float32) error {
	return b.WriteU32(dest, register, math.Float32bits(value))
}
