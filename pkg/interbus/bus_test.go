// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusReadRegister(t *testing.T) {
	reply := buildReplyFrame(0x0F, MsgDatagram, 0x61, []byte{0x10, 0x27})
	st := newScriptTransport(reply)
	bus := NewBus(st, 0x42)

	payload, err := bus.ReadRegister(0x0F, 0x61)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x27}, payload)

	// Stale input must be flushed before the request goes out
	assert.Equal(t, 1, st.flushes)

	// The request on the wire: RDCMD from master 0x42 with empty payload
	require.Len(t, st.writes, 1)
	wantFrame, err := Encode(0x0F, 0x42, MsgRead, 0x61, nil)
	require.NoError(t, err)
	assert.Equal(t, wantFrame, st.writes[0])
}

func TestBusWriteRegister(t *testing.T) {
	ack := buildReplyFrame(0x0F, MsgAck, 0x30, nil)
	st := newScriptTransport(ack)
	bus := NewBus(st, 0x42)

	err := bus.WriteRegister(0x0F, 0x30, []byte{0x01, 0x02})
	require.NoError(t, err)

	wantFrame, err := Encode(0x0F, 0x42, MsgWrite, 0x30, []byte{0x01, 0x02})
	require.NoError(t, err)
	require.Len(t, st.writes, 1)
	assert.Equal(t, wantFrame, st.writes[0])
}

func TestBusWriteRegisterDiscardsAckPayload(t *testing.T) {
	// Some modules pad the ACK; the session must accept and discard it.
	ack := buildReplyFrame(0x0F, MsgAck, 0x30, []byte{0xAA})
	bus := NewBus(newScriptTransport(ack), 0x42)

	require.NoError(t, bus.WriteRegister(0x0F, 0x30, []byte{0x01}))
}

func TestBusRequestContentMismatch(t *testing.T) {
	// Checksum-valid reply from the wrong module address
	reply := buildReplyFrame(0x10, MsgDatagram, 0x61, []byte{0x01})
	bus := NewBus(newScriptTransport(reply), 0x42)

	payload, err := bus.ReadRegister(0x0F, 0x61)
	assert.ErrorIs(t, err, ErrContentMismatch)
	assert.Nil(t, payload)
}

func TestBusRequestChecksumInvalid(t *testing.T) {
	reply := buildReplyFrame(0x0F, MsgDatagram, 0x61, []byte{0x01})
	reply[3] ^= 0xFF
	bus := NewBus(newScriptTransport(reply), 0x42)

	_, err := bus.ReadRegister(0x0F, 0x61)
	assert.ErrorIs(t, err, ErrChecksumInvalid)
}

func TestBusRequestTimeoutOnSilentPeer(t *testing.T) {
	// No bytes at all: the very first failed read ends the attempt.
	st := newScriptTransport()
	bus := NewBus(st, 0x42)

	_, err := bus.ReadRegister(0x0F, 0x61)
	assert.ErrorIs(t, err, ErrReadTimeout)
	assert.Equal(t, 0, st.pos)
}

func TestBusRequestTransportLost(t *testing.T) {
	st := newScriptTransport([]byte{SOT, 0x01})
	st.tailErr = errors.New("device unplugged")
	bus := NewBus(st, 0x42)

	_, err := bus.ReadRegister(0x0F, 0x61)
	assert.ErrorIs(t, err, st.tailErr)
	assert.ErrorIs(t, err, ErrTransportLost)
}

func TestBusRequestFrameOverrun(t *testing.T) {
	// A peer that streams bytes without ever sending EOT must not block
	// forever; the byte budget ends the attempt.
	junk := make([]byte, 64)
	junk[0] = SOT
	for i := 1; i < len(junk); i++ {
		junk[i] = 0x01
	}
	st := newScriptTransport(junk)
	bus := NewBus(st, 0x42, WithMaxFrameBytes(32))

	_, err := bus.ReadRegister(0x0F, 0x61)
	assert.ErrorIs(t, err, ErrFrameOverrun)
}

func TestBusRecoversAfterFailedTransaction(t *testing.T) {
	bad := buildReplyFrame(0x0F, MsgDatagram, 0x61, []byte{0x01})
	bad[4] ^= 0x01
	good := buildReplyFrame(0x0F, MsgDatagram, 0x61, []byte{0x55})

	st := newScriptTransport(bad, good)
	bus := NewBus(st, 0x42)

	_, err := bus.ReadRegister(0x0F, 0x61)
	require.ErrorIs(t, err, ErrChecksumInvalid)

	// The bus stays open and the next transaction starts from a clean state
	payload, err := bus.ReadRegister(0x0F, 0x61)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x55}, payload)
}

func TestBusRequestEncodingErrorBeforeIO(t *testing.T) {
	st := newScriptTransport()
	bus := NewBus(st, 0x42)

	_, err := bus.Request(0x0F, 0x61, MsgRead, []byte{0x01}, MsgDatagram)
	assert.ErrorIs(t, err, ErrUnexpectedPayload)
	assert.Empty(t, st.writes, "nothing may reach the wire on an encoding error")
	assert.Zero(t, st.flushes)
}

func TestBusClosed(t *testing.T) {
	st := newScriptTransport()
	bus := NewBus(st, 0x42)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "double close must be a no-op")

	_, err := bus.ReadRegister(0x0F, 0x61)
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestBusSkipsNoiseBeforeReply(t *testing.T) {
	noise := []byte{0xDE, 0xAD}
	reply := buildReplyFrame(0x0F, MsgDatagram, 0x61, []byte{0x07})
	bus := NewBus(newScriptTransport(noise, reply), 0x42)

	payload, err := bus.ReadRegister(0x0F, 0x61)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07}, payload)
}

func TestBusPayloadCopyIsStable(t *testing.T) {
	first := buildReplyFrame(0x0F, MsgDatagram, 0x61, []byte{0x11, 0x22})
	second := buildReplyFrame(0x0F, MsgDatagram, 0x62, []byte{0x33, 0x44})
	bus := NewBus(newScriptTransport(first, second), 0x42)

	p1, err := bus.ReadRegister(0x0F, 0x61)
	require.NoError(t, err)
	_, err = bus.ReadRegister(0x0F, 0x62)
	require.NoError(t, err)

	// p1 must not alias the receive buffer reused by the second transaction
	assert.Equal(t, []byte{0x11, 0x22}, p1)
}
