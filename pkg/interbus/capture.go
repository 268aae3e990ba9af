// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import (
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Telegram capture files are a stream of CBOR-encoded records, one per
// decoded telegram, suitable for offline analysis or replay.

// CaptureRecord is one captured telegram.
type CaptureRecord struct {
	TimestampUs int64  `cbor:"1,keyasint"` // microseconds since the Unix epoch
	Address     byte   `cbor:"2,keyasint"`
	Type        byte   `cbor:"3,keyasint"`
	Register    byte   `cbor:"4,keyasint"`
	Payload     []byte `cbor:"5,keyasint"`
}

// Telegram converts the record back into a telegram.
func (r *CaptureRecord) Telegram() *Telegram {
	return &Telegram{
		dest:      r.Address,
		msgType:   MessageType(r.Type),
		register:  r.Register,
		payload:   r.Payload,
		timestamp: time.UnixMicro(r.TimestampUs),
	}
}

// CaptureWriter appends telegrams to a capture stream.
type CaptureWriter struct {
	enc *cbor.Encoder
}

// NewCaptureWriter creates a capture writer on w.
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{enc: cbor.NewEncoder(w)}
}

// Write records one telegram.
func (cw *CaptureWriter) Write(t *Telegram) error {
	return cw.enc.Encode(&CaptureRecord{
		TimestampUs: t.Timestamp().UnixMicro(),
		Address:     t.Dest(),
		Type:        byte(t.Type()),
		Register:    t.Register(),
		Payload:     t.Payload(),
	})
}

// CaptureReader reads telegrams back from a capture stream.
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a capture reader on r.
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Read returns the next record, or io.EOF at the end of the stream.
func (cr *CaptureReader) Read() (*CaptureRecord, error) {
	var rec CaptureRecord
	if err := cr.dec.Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
