package chainxt

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/types"
)

func TestTransportUnavailableError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportUnavailable("ResolveBlockHash", 42, cause)
	if err.Index != 42 {
		t.Errorf("expected index 42, got %d", err.Index)
	}

	expected := "transport unavailable: ResolveBlockHash at block 42: connection refused"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to unwrap to its cause")
	}
}

func TestIsTransportUnavailable(t *testing.T) {
	base := NewTransportUnavailable("FetchEventLog", 10, errors.New("eof"))

	// Direct.
	tu, ok := IsTransportUnavailable(base)
	if !ok {
		t.Fatal("expected IsTransportUnavailable to return true")
	}
	if tu.Index != 10 {
		t.Errorf("expected index 10, got %d", tu.Index)
	}

	// Wrapped.
	wrapped := fmt.Errorf("wrapped: %w", base)
	if _, ok := IsTransportUnavailable(wrapped); !ok {
		t.Fatal("expected IsTransportUnavailable to unwrap wrapped error")
	}

	// Other error.
	if _, ok := IsTransportUnavailable(errors.New("just a regular error")); ok {
		t.Fatal("expected IsTransportUnavailable to return false for other errors")
	}

	// Nil.
	if _, ok := IsTransportUnavailable(nil); ok {
		t.Fatal("expected IsTransportUnavailable to return false for nil")
	}
}

func TestIsMissingCapability(t *testing.T) {
	rt := types.Runtime{Name: "empty"}
	err := fmt.Errorf("build: %w", rt.Require(types.CapSystem))
	m, ok := IsMissingCapability(err)
	if !ok {
		t.Fatal("expected IsMissingCapability to unwrap wrapped error")
	}
	if m.Field != "AccountID" {
		t.Errorf("expected AccountID field, got %q", m.Field)
	}
}

func TestIsMalformed(t *testing.T) {
	_, _, err := codec.DecodeCompact(nil)
	if _, ok := IsMalformed(fmt.Errorf("decode: %w", err)); !ok {
		t.Fatal("expected IsMalformed to unwrap wrapped error")
	}
	if _, ok := IsMalformed(errors.New("other")); ok {
		t.Fatal("expected IsMalformed to return false for other errors")
	}
}
