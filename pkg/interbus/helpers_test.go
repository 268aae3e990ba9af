// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

// Shared test helpers: a scripted in-memory transport and a builder for
// reply-shaped frames (address, type, register, payload, checksum).

// buildReplyFrame constructs the wire form of a module reply.
func buildReplyFrame(addr byte, msgType MessageType, register byte, payload []byte) []byte {
	body := append([]byte{addr, byte(msgType), register}, payload...)
	crc := Checksum(body)

	frame := []byte{SOT}
	for _, b := range body {
		frame = appendEscaped(frame, b)
	}
	frame = appendEscaped(frame, byte(crc>>8))
	frame = appendEscaped(frame, byte(crc&0xFF))
	return append(frame, EOT)
}

// scriptTransport replays a fixed byte script and records writes. Once the
// script is exhausted, reads return tailErr (ErrReadTimeout by default).
type scriptTransport struct {
	reads   []byte
	pos     int
	tailErr error
	writes  [][]byte
	flushes int
	closed  bool
}

func newScriptTransport(reads ...[]byte) *scriptTransport {
	st := &scriptTransport{}
	for _, r := range reads {
		st.reads = append(st.reads, r...)
	}
	return st
}

func (st *scriptTransport) ReadByte() (byte, error) {
	if st.pos >= len(st.reads) {
		if st.tailErr != nil {
			return 0, st.tailErr
		}
		return 0, ErrReadTimeout
	}
	b := st.reads[st.pos]
	st.pos++
	return b, nil
}

func (st *scriptTransport) Write(p []byte) (int, error) {
	st.writes = append(st.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (st *scriptTransport) FlushInput() error {
	st.flushes++
	return nil
}

func (st *scriptTransport) IsOpen() bool {
	return !st.closed
}

func (st *scriptTransport) Close() error {
	st.closed = true
	return nil
}
