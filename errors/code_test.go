package errors_test

import (
	"testing"

	cerr "github.com/pseudonym/chordring/errors"
)

func TestErrorCode(t *testing.T) {
	e := cerr.ErrItemNotFound.Error(nil)
	if e.Code() != cerr.ErrItemNotFound {
		t.Fatalf("expected code %d, got %d", cerr.ErrItemNotFound, e.Code())
	}
	if !e.IsCode(cerr.ErrItemNotFound) {
		t.Fatal("IsCode should report true for its own code")
	}
}

func TestErrorParentChain(t *testing.T) {
	parent := cerr.ErrDialFailed.Error(nil)
	e := cerr.ErrTransactionUnknown.Error(parent)

	if !e.HasParent() {
		t.Fatal("expected a parent error")
	}
	if len(e.Parents()) != 1 {
		t.Fatalf("expected exactly one parent, got %d", len(e.Parents()))
	}
}

func TestErrorIsMatchesSameCode(t *testing.T) {
	a := cerr.ErrSocketClosed.Error(nil)
	b := cerr.ErrSocketClosed.Error(nil)

	if !a.Is(b) {
		t.Fatal("two errors with the same code should match Is")
	}
}

func TestUnknownCodeMessage(t *testing.T) {
	var c cerr.Code = 9999
	if c.String() != "unknown error" {
		t.Fatalf("expected fallback message, got %q", c.String())
	}
}
