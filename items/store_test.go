package items_test

import (
	"testing"

	"github.com/pseudonym/chordring/idspace"
	"github.com/pseudonym/chordring/items"
)

func TestPutComputesFileIDAndIsRetrievable(t *testing.T) {
	s := items.NewStore()
	payload := []byte("hello")
	id := s.Put(payload)

	if id != idspace.FileID(payload) {
		t.Fatal("Put should key by make_file_id(payload)")
	}
	got, ok := s.Get(id)
	if !ok || string(got) != "hello" {
		t.Fatalf("unexpected get result: %q ok=%v", got, ok)
	}
}

func TestPutAtOverwritesUnconditionally(t *testing.T) {
	s := items.NewStore()
	id := idspace.NodeID("some-id-used-as-a-key")
	s.PutAt(id, []byte("first"))
	s.PutAt(id, []byte("second"))

	got, ok := s.Get(id)
	if !ok || string(got) != "second" {
		t.Fatalf("expected unconditional overwrite, got %q", got)
	}
}

func TestRangeTransferSelectsOpenInterval(t *testing.T) {
	s := items.NewStore()
	low := idspace.NodeID("low")
	inside := idspace.AddUint(low, 5)
	high := idspace.AddUint(low, 10)
	outside := idspace.AddUint(low, 20)

	s.PutAt(inside, []byte("in"))
	s.PutAt(high, []byte("edge"))
	s.PutAt(outside, []byte("out"))
	s.PutAt(low, []byte("self")) // distance(low,low) is defined as 2^160, so low itself never qualifies

	entries := s.RangeTransfer(low, high)
	ids := make(map[idspace.ID]bool)
	for _, e := range entries {
		ids[e.ID] = true
	}

	if !ids[inside] {
		t.Fatal("expected an id strictly inside the range to be selected")
	}
	if ids[outside] || ids[high] || ids[low] {
		t.Fatal("expected ids at or beyond the upper bound, and the bound's own id, to be excluded")
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 entry, got %d", len(entries))
	}
}

func TestLenTracksStoredItems(t *testing.T) {
	s := items.NewStore()
	if s.Len() != 0 {
		t.Fatal("new store should be empty")
	}
	s.Put([]byte("a"))
	s.Put([]byte("b"))
	if s.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", s.Len())
	}
}
