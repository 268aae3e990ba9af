// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		format  string
		want    string
		wantErr bool
	}{
		{name: "hex", payload: []byte{0xDE, 0xAD}, format: "hex", want: "DE AD"},
		{name: "u8", payload: []byte{42}, format: "u8", want: "42"},
		{name: "u16 little-endian", payload: []byte{0x10, 0x27}, format: "u16", want: "10000"},
		{name: "u32 little-endian", payload: []byte{0x78, 0x56, 0x34, 0x12}, format: "u32", want: "305419896"},
		{name: "f32", payload: []byte{0x00, 0x00, 0x20, 0x41}, format: "f32", want: "10"},
		{name: "ascii trims nul padding", payload: []byte("SuperK\x00"), format: "ascii", want: "SuperK"},
		{name: "u16 too short", payload: []byte{0x01}, format: "u16", wantErr: true},
		{name: "unknown format", payload: []byte{0x01}, format: "octal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatPayload(tt.payload, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		format  string
		want    []byte
		wantErr bool
	}{
		{name: "hex plain", arg: "2a00", format: "hex", want: []byte{0x2A, 0x00}},
		{name: "hex with spaces", arg: "2A 00", format: "hex", want: []byte{0x2A, 0x00}},
		{name: "hex 0x prefix", arg: "0x2A00", format: "hex", want: []byte{0x2A, 0x00}},
		{name: "u8", arg: "42", format: "u8", want: []byte{42}},
		{name: "u16 little-endian", arg: "10000", format: "u16", want: []byte{0x10, 0x27}},
		{name: "u16 hex literal", arg: "0x2710", format: "u16", want: []byte{0x10, 0x27}},
		{name: "u32", arg: "305419896", format: "u32", want: []byte{0x78, 0x56, 0x34, 0x12}},
		{name: "f32", arg: "10.0", format: "f32", want: []byte{0x00, 0x00, 0x20, 0x41}},
		{name: "ascii", arg: "ON", format: "ascii", want: []byte("ON")},
		{name: "odd hex digits", arg: "2a0", format: "hex", wantErr: true},
		{name: "u8 overflow", arg: "300", format: "u8", wantErr: true},
		{name: "unknown format", arg: "1", format: "octal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeValue(tt.arg, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
