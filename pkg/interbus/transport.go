// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Transport is the duplex byte channel a Bus drives. Implementations must
// make the two read failure modes distinguishable: an expired read timeout
// is reported as an error matching ErrReadTimeout, any other failure as one
// matching ErrTransportLost.
type Transport interface {
	// ReadByte blocks for at most the configured timeout for one byte.
	ReadByte() (byte, error)

	// Write sends the given bytes, blocking until accepted.
	Write(p []byte) (int, error)

	// FlushInput discards any buffered unread input.
	FlushInput() error

	// IsOpen reports whether the transport is usable.
	IsOpen() bool

	// Close releases the transport. Safe to call more than once.
	Close() error
}

// serialTransport adapts a go.bug.st/serial port to the Transport contract.
type serialTransport struct {
	port serial.Port
	buf  [1]byte
	open bool
}

// OpenSerial opens a serial device as an Interbus transport. The port is
// configured 8N1 at the given baud rate with the timeout applied to reads.
func OpenSerial(device string, baud int, timeout time.Duration) (Transport, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}

	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", device, err)
	}

	return &serialTransport{port: port, open: true}, nil
}

func (s *serialTransport) ReadByte() (byte, error) {
	n, err := s.port.Read(s.buf[:1])
	if err != nil {
		s.open = false
		return 0, fmt.Errorf("%w: %w", ErrTransportLost, err)
	}
	if n == 0 {
		// go.bug.st/serial reports an expired read timeout as a
		// zero-length read with a nil error.
		return 0, ErrReadTimeout
	}
	return s.buf[0], nil
}

func (s *serialTransport) Write(p []byte) (int, error) {
	n, err := s.port.Write(p)
	if err != nil {
		s.open = false
		return n, fmt.Errorf("%w: %w", ErrTransportLost, err)
	}
	return n, nil
}

func (s *serialTransport) FlushInput() error {
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportLost, err)
	}
	return nil
}

func (s *serialTransport) IsOpen() bool {
	return s.open
}

func (s *serialTransport) Close() error {
	if !s.open {
		return nil
	}
	s.open = false
	return s.port.Close()
}

// ListPorts returns the names of serial ports present on the system.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
