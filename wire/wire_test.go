package wire_test

import (
	"testing"

	"github.com/pseudonym/chordring/wire"
)

func TestConsumeWaitsForFullLine(t *testing.T) {
	n, _, keep := wire.Consume([]byte("FIND deadbeef"))
	if n != 0 || keep {
		t.Fatalf("expected no frame consumed without a newline, got n=%d keep=%v", n, keep)
	}
}

func TestConsumeKeepaliveConsumesOneByte(t *testing.T) {
	n, line, keep := wire.Consume([]byte("\nNOTIFY 127.0.0.1:1"))
	if n != 1 || line != "" || !keep {
		t.Fatalf("expected keepalive frame of 1 byte, got n=%d line=%q keep=%v", n, line, keep)
	}
}

func TestConsumeFullLine(t *testing.T) {
	raw := "NOTIFY 127.0.0.1:20000\nrest"
	n, line, keep := wire.Consume([]byte(raw))
	if keep {
		t.Fatal("did not expect a keepalive")
	}
	if line != "NOTIFY 127.0.0.1:20000" {
		t.Fatalf("unexpected line: %q", line)
	}
	if n != len("NOTIFY 127.0.0.1:20000\n") {
		t.Fatalf("unexpected consumed length: %d", n)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw := wire.EncodeFind(wire.Find{Hash: "aa", Origin: "127.0.0.1:1", TransID: "n-1"})
	n, line, keep := wire.Consume(raw)
	if keep || n != len(raw) {
		t.Fatalf("unexpected frame: n=%d keep=%v", n, keep)
	}

	verb, args, err := wire.Decode(line)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if verb != wire.VerbFind {
		t.Fatalf("unexpected verb: %s", verb)
	}

	f, err := wire.ParseFind(args)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if f.Hash != "aa" || f.Origin != "127.0.0.1:1" || f.TransID != "n-1" {
		t.Fatalf("unexpected fields: %+v", f)
	}
}

func TestParseRejectsWrongArity(t *testing.T) {
	if _, err := wire.ParseFind([]string{"aa", "only-one"}); err == nil {
		t.Fatal("expected arity mismatch to error")
	}
}

func TestParseCShowTakesNoArguments(t *testing.T) {
	if _, err := wire.ParseCShow(nil); err != nil {
		t.Fatalf("CSHOW takes no arguments: %v", err)
	}
	if _, err := wire.ParseCShow([]string{"unexpected"}); err == nil {
		t.Fatal("expected arity mismatch to error")
	}
}

func TestBase64RoundTrip(t *testing.T) {
	payload := []byte("hello")
	encoded := wire.B64Encode(payload)
	if encoded != "aGVsbG8=" {
		t.Fatalf("unexpected encoding: %s", encoded)
	}
	decoded, err := wire.B64Decode(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("unexpected payload: %s", decoded)
	}
}
