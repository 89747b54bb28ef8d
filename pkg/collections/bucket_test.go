package collections

import "testing"

func TestGainBucket_InsertAndMaxKey(t *testing.T) {
	b := NewGainBucket()
	if !b.Empty() {
		t.Fatal("expected new bucket to be empty")
	}

	b.Insert(2, "a")
	b.Insert(5, "b")
	b.Insert(-1, "c")

	g, ok := b.MaxKey()
	if !ok || g != 5 {
		t.Fatalf("expected max key 5, got %d (ok=%v)", g, ok)
	}
}

func TestGainBucket_PopMaxTieBreakDeterministic(t *testing.T) {
	b := NewGainBucket()
	b.Insert(3, "zebra")
	b.Insert(3, "apple")
	b.Insert(3, "mango")

	name, gain, ok := b.PopMax()
	if !ok {
		t.Fatal("expected a pop result")
	}
	if gain != 3 {
		t.Fatalf("expected gain 3, got %d", gain)
	}
	if name != "apple" {
		t.Fatalf("expected deterministic smallest-name pick 'apple', got %q", name)
	}
}

func TestGainBucket_RemoveDropsEmptyKey(t *testing.T) {
	b := NewGainBucket()
	b.Insert(7, "only")
	b.RemoveFromGain(7, "only")

	if !b.Empty() {
		t.Fatal("expected bucket to be empty after removing its only member")
	}
	if _, ok := b.MaxKey(); ok {
		t.Fatal("expected no max key on empty bucket")
	}
}

func TestGainBucket_LenAndContains(t *testing.T) {
	b := NewGainBucket()
	b.Insert(1, "a")
	b.Insert(1, "b")
	b.Insert(2, "c")

	if b.Len() != 3 {
		t.Fatalf("expected len 3, got %d", b.Len())
	}
	if !b.Contains(1, "a") {
		t.Fatal("expected bucket[1] to contain a")
	}
	if b.Contains(2, "a") {
		t.Fatal("did not expect bucket[2] to contain a")
	}
}

func TestGainBucket_ReinsertAtNewGain(t *testing.T) {
	b := NewGainBucket()
	b.Insert(0, "x")
	b.RemoveFromGain(0, "x")
	b.Insert(4, "x")

	g, ok := b.MaxKey()
	if !ok || g != 4 {
		t.Fatalf("expected max key 4 after reinsert, got %d (ok=%v)", g, ok)
	}
	if b.Contains(0, "x") {
		t.Fatal("did not expect x to remain at old gain")
	}
}
