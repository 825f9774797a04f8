// Package types defines the data model shared by call builders, event
// decoders and the block poller.
//
// Wire-facing structs carry cramberry struct tags for deterministic
// serialization by the transport packages. Call payloads and event
// records use the compact encoding from package codec.
package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/blockberries/chainxt/codec"
)

// HashLen is the byte length of Hash and AccountID.
const HashLen = 32

// Hash is a 32-byte block, code or extrinsic hash.
type Hash [HashLen]byte

func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) EncodeTo(e *codec.Encoder) { e.PutFixed(h[:]) }

// MarshalText renders h as 0x-prefixed hex, so JSON carries a string.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hash) UnmarshalText(b []byte) error { return parseFixedHex(string(b), h[:]) }

func (h *Hash) DecodeFrom(d *codec.Decoder) error {
	b, err := d.Fixed(HashLen)
	if err != nil {
		return err
	}
	copy(h[:], b)
	return nil
}

// HashFromHex parses a 0x-prefixed or bare hex string of 32 bytes.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	err := parseFixedHex(s, h[:])
	return h, err
}

// AccountID identifies an account on the runtime.
type AccountID [HashLen]byte

func (a AccountID) String() string { return "0x" + hex.EncodeToString(a[:]) }

func (a AccountID) EncodeTo(e *codec.Encoder) { e.PutFixed(a[:]) }

func (a AccountID) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AccountID) UnmarshalText(b []byte) error { return parseFixedHex(string(b), a[:]) }

func (a *AccountID) DecodeFrom(d *codec.Decoder) error {
	b, err := d.Fixed(HashLen)
	if err != nil {
		return err
	}
	copy(a[:], b)
	return nil
}

// AccountIDFromHex parses a 0x-prefixed or bare hex string of 32 bytes.
func AccountIDFromHex(s string) (AccountID, error) {
	var a AccountID
	err := parseFixedHex(s, a[:])
	return a, err
}

func parseFixedHex(s string, dst []byte) error {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return fmt.Errorf("parse hex: %w", err)
	}
	if len(b) != len(dst) {
		return fmt.Errorf("parse hex: want %d bytes, got %d", len(dst), len(b))
	}
	copy(dst, b)
	return nil
}

// ParseBalance parses a decimal balance amount.
// Balances are unsigned integers of up to 256 bits; the width a given
// runtime uses is declared by Runtime.Balance.
func ParseBalance(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", s, err)
	}
	return v, nil
}

// SubmitResult is the transport's acknowledgement of a submitted payload.
type SubmitResult struct {
	Hash Hash `cramberry:"1"`
}
