// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

// Checksum computes the CRC-16/XMODEM checksum for the given data
func Checksum(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// VerifyChecksum reports whether data, whose last two bytes are a big-endian
// CRC-16/XMODEM checksum of the preceding bytes, has a zero residual.
func VerifyChecksum(data []byte) bool {
	return Checksum(data) == 0
}
