package transaction_test

import (
	"testing"

	"github.com/pseudonym/chordring/transaction"
)

type fakeConn struct{ closed bool }

func (f *fakeConn) WriteLine(tokens ...string) error { return nil }
func (f *fakeConn) CloseWhenDone()                   { f.closed = true }

type fakeTimer struct{ cancelled bool }

func (f *fakeTimer) Cancel() { f.cancelled = true }

func TestNextIDIsUniqueAndPrefixed(t *testing.T) {
	r := transaction.NewRegistry("127.0.0.1:20000")
	a := r.NextID()
	b := r.NextID()
	if a == b {
		t.Fatal("expected distinct transaction IDs")
	}
	if a != "127.0.0.1:20000-1" || b != "127.0.0.1:20000-2" {
		t.Fatalf("unexpected IDs: %s %s", a, b)
	}
}

func TestAddGetRemove(t *testing.T) {
	r := transaction.NewRegistry("self")
	id := r.NextID()
	r.Add(transaction.Finger(id, 7))

	got, ok := r.Get(id)
	if !ok || got.Kind != transaction.KindFinger || got.Index != 7 {
		t.Fatalf("unexpected lookup result: %+v ok=%v", got, ok)
	}

	removed, ok := r.Remove(id)
	if !ok || removed.ID != id {
		t.Fatal("expected removal to find the transaction")
	}
	if _, ok := r.Get(id); ok {
		t.Fatal("transaction should be gone after removal")
	}
}

func TestRemoveByClientPurgesOnlyMatchingClientKinds(t *testing.T) {
	r := transaction.NewRegistry("self")
	conn := &fakeConn{}
	other := &fakeConn{}

	getID := r.NextID()
	r.Add(transaction.Get(getID, conn))
	putID := r.NextID()
	r.Add(transaction.Put(putID, conn, []byte("payload")))
	otherID := r.NextID()
	r.Add(transaction.Get(otherID, other))
	fingerID := r.NextID()
	r.Add(transaction.Finger(fingerID, 0))

	purged := r.RemoveByClient(conn)
	if len(purged) != 2 {
		t.Fatalf("expected 2 purged transactions, got %d", len(purged))
	}
	if _, ok := r.Get(getID); ok {
		t.Fatal("GET transaction for disconnected client should be purged")
	}
	if _, ok := r.Get(putID); ok {
		t.Fatal("PUT transaction for disconnected client should be purged")
	}
	if _, ok := r.Get(otherID); !ok {
		t.Fatal("transaction for a different client should survive")
	}
	if _, ok := r.Get(fingerID); !ok {
		t.Fatal("non-client-kind transaction should survive")
	}
}

func TestShowTransactionOwnsTimer(t *testing.T) {
	r := transaction.NewRegistry("self")
	conn := &fakeConn{}
	timer := &fakeTimer{}
	id := r.NextID()
	r.Add(transaction.Show(id, conn, timer))

	got, ok := r.Get(id)
	if !ok || got.Kind != transaction.KindShow {
		t.Fatal("expected SHOW transaction")
	}
	got.Timer.Cancel()
	if !timer.cancelled {
		t.Fatal("expected timer to be cancellable through the transaction")
	}
}

func TestKindTagString(t *testing.T) {
	cases := map[transaction.KindTag]string{
		transaction.KindFinger: "FINGER",
		transaction.KindBackup: "BACKUP",
		transaction.KindPrune:  "PRUNE",
		transaction.KindGet:    "GET",
		transaction.KindPut:    "PUT",
		transaction.KindShow:   "SHOW",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("KindTag(%d).String() = %q, want %q", k, got, want)
		}
	}
}
