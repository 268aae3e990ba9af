package interbus

import "fmt"

// appendEscaped appends b to dst, replacing a reserved byte value with the
// two-byte sequence SOE, value+ECC so it cannot be confused with a delimiter.
func appendEscaped(dst []byte, b byte) []byte {
	if b == SOT || b == EOT || b == SOE {
		return append(dst, SOE, b+ECC)
	}
	return append(dst, b)
}

// AppendFrame appends the wire form of a telegram to dst and returns the
// extended slice. The checksum is computed over the unescaped body bytes
// (destination through the last payload byte); escaping is a
// transmission-only transform applied afterward, checksum bytes included.
// The framing bytes SOT and EOT are written raw.
//
// A non-write message type with a non-empty payload is a caller contract
// violation and fails with ErrUnexpectedPayload.
func AppendFrame(dst []byte, dest, source byte, msgType MessageType, register byte, payload []byte) ([]byte, error) {
	if len(payload) > 0 && !msgType.IsWrite() {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedPayload, msgType)
	}

	body := make([]byte, 0, 4+len(payload))
	body = append(body, dest, source, byte(msgType), register)
	body = append(body, payload...)

	crc := Checksum(body)

	dst = append(dst, SOT)
	for _, b := range body {
		dst = appendEscaped(dst, b)
	}
	dst = appendEscaped(dst, byte(crc>>8))
	dst = appendEscaped(dst, byte(crc&0xFF))
	dst = append(dst, EOT)

	return dst, nil
}

// Encode serializes a telegram to wire format, ready for transmission.
func Encode(dest, source byte, msgType MessageType, register byte, payload []byte) ([]byte, error) {
	return AppendFrame(nil, dest, source, msgType, register, payload)
}

// EncodeTelegram encodes a Telegram struct to wire format.
func EncodeTelegram(t *Telegram) ([]byte, error) {
	return Encode(t.Dest(), t.Source(), t.Type(), t.Register(), t.Payload())
}
