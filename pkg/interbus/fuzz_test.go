// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// TestFuzzReplyRoundTrip builds random reply frames and drives them through
// the receiver: every checksum-valid frame must come back byte-identical.
func TestFuzzReplyRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	rx := NewReceiver()
	for i := 0; i < rounds; i++ {
		addr := byte(rng.Intn(256))
		register := byte(rng.Intn(256))
		payload := make([]byte, rng.Intn(32))
		rng.Read(payload)

		frame := buildReplyFrame(addr, MsgDatagram, register, payload)

		rx.Reset(&Expect{Address: addr, Type: MsgDatagram, Register: register})
		for _, b := range frame {
			rx.Feed(b)
		}

		if rx.State() != RxReady {
			t.Fatalf("round %d: state = %v, want RxReady (addr=%#02x reg=%#02x payload=% X)",
				i, rx.State(), addr, register, payload)
		}
		if !bytes.Equal(rx.Payload(), payload) {
			t.Fatalf("round %d: payload = % X, want % X", i, rx.Payload(), payload)
		}
	}
}

// TestFuzzEncodedRequestNeverLeaksDelimiters checks the escaping invariant
// for random requests: between SOT and EOT no bare delimiter may appear.
func TestFuzzEncodedRequestNeverLeaksDelimiters(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	writeTypes := []MessageType{MsgWrite, MsgWriteSet, MsgWriteClr, MsgWriteTgl}

	for i := 0; i < rounds; i++ {
		msgType := writeTypes[rng.Intn(len(writeTypes))]
		payload := make([]byte, rng.Intn(64))
		rng.Read(payload)

		frame, err := Encode(byte(rng.Intn(256)), byte(rng.Intn(256)), msgType, byte(rng.Intn(256)), payload)
		if err != nil {
			t.Fatalf("round %d: Encode failed: %v", i, err)
		}

		inner := frame[1 : len(frame)-1]
		if bytes.IndexByte(inner, SOT) >= 0 || bytes.IndexByte(inner, EOT) >= 0 {
			t.Fatalf("round %d: bare delimiter inside frame % X", i, frame)
		}
	}
}

// TestFuzzReceiverNeverPanicsOnNoise feeds random garbage through the
// receiver. It may land in any state, but must never panic and must never
// report Ready for a frame that fails verification.
func TestFuzzReceiverNeverPanicsOnNoise(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	rx := NewReceiver()
	for i := 0; i < rounds; i++ {
		rx.Reset(nil)

		noise := make([]byte, rng.Intn(256))
		rng.Read(noise)

		for _, b := range noise {
			state := rx.Feed(b)
			if state == RxReady {
				body := rx.body
				if len(body) < MinBodySize || !VerifyChecksum(body) {
					t.Fatalf("round %d: Ready with invalid body % X", i, body)
				}
				rx.Reset(nil)
			}
		}
	}
}
