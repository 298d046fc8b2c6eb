package idspace_test

import (
	"math/big"
	"testing"

	"github.com/pseudonym/chordring/idspace"
)

func TestNodeIDFileIDDomainSeparation(t *testing.T) {
	addr := "127.0.0.1:20000"
	nodeID := idspace.NodeID(addr)
	fileID := idspace.FileID([]byte(addr))

	if nodeID.Equal(fileID) {
		t.Fatal("node id and file id of the same bytes must differ under domain separation (P4)")
	}
}

func TestDistanceSelfIsMaximum(t *testing.T) {
	id := idspace.NodeID("a:1")
	d := idspace.Distance(id, id)

	want := new(big.Int).Lsh(big.NewInt(1), idspace.Bits)
	if d.Cmp(want) != 0 {
		t.Fatalf("distance(a,a) should be 2^160, got %s", d.String())
	}
}

func TestDistanceComplement(t *testing.T) {
	a := idspace.NodeID("a:1")
	b := idspace.NodeID("b:2")

	d1 := idspace.Distance(a, b)
	d2 := idspace.Distance(b, a)

	sum := new(big.Int).Add(d1, d2)
	want := new(big.Int).Lsh(big.NewInt(1), idspace.Bits)
	if sum.Cmp(want) != 0 {
		t.Fatalf("distance(a,b)+distance(b,a) should equal 2^160, got %s", sum.String())
	}
}

func TestDistanceAddRoundTrip(t *testing.T) {
	a := idspace.NodeID("a:1")

	for _, n := range []uint64{0, 1, 42, 1 << 40} {
		b := idspace.AddUint(a, n)
		got := idspace.Distance(a, b)
		// add(a,0) is a itself, and distance(a,a) is defined as 2^160.
		want := new(big.Int).SetUint64(n)
		if n == 0 {
			want = new(big.Int).Lsh(big.NewInt(1), idspace.Bits)
		}
		if got.Cmp(want) != 0 {
			t.Fatalf("distance(a, add(a,%d)) should be %s, got %s", n, want.String(), got.String())
		}
	}
}

func TestAddWrapsModulo(t *testing.T) {
	var maxID idspace.ID
	for i := range maxID {
		maxID[i] = 0xff
	}

	got := idspace.Add(maxID, big.NewInt(1))
	var zero idspace.ID
	if got != zero {
		t.Fatalf("adding 1 to the maximum id should wrap to zero, got %s", got.String())
	}
}

func TestParseRoundTrip(t *testing.T) {
	id := idspace.NodeID("round:trip")
	parsed, ok := idspace.Parse(id.String())
	if !ok {
		t.Fatal("expected Parse to succeed on a valid 40-hex-digit string")
	}
	if parsed != id {
		t.Fatal("parsed id should equal the original")
	}
}

func TestParseRejectsWrongLength(t *testing.T) {
	if _, ok := idspace.Parse("deadbeef"); ok {
		t.Fatal("expected Parse to reject a short string")
	}
}

func TestLessOrdersByForwardDistance(t *testing.T) {
	self := idspace.NodeID("self")
	near := idspace.AddUint(self, 10)
	far := idspace.AddUint(self, 1000)

	if !idspace.Less(self, near, far) {
		t.Fatal("near should be Less than far relative to self")
	}
	if idspace.Less(self, far, near) {
		t.Fatal("far should not be Less than near relative to self")
	}
}
