package assets

import (
	"sync"
	"testing"
)

func TestIndexRegisterAndLookup(t *testing.T) {
	index := NewIndex()
	wood := NewID()
	index.Register(wood, "Assets/Wood.png")

	if got := index.PathOf(wood); got != "Assets/Wood.png" {
		t.Fatalf("expected original spelling, got %q", got)
	}
	if got := index.IDOf("assets/wood.PNG"); got != wood {
		t.Fatalf("expected case-insensitive path lookup, got %s", got)
	}
	if !index.ContainsID(wood) || !index.ContainsPath("ASSETS/WOOD.PNG") {
		t.Fatalf("expected contains checks to succeed")
	}
	if index.PathOf(NewID()) != "" || !index.IDOf("Assets/missing.png").IsNil() {
		t.Fatalf("expected empty results for unknown keys")
	}
}

func TestIndexConflictsAreNoOps(t *testing.T) {
	index := NewIndex()
	first := NewID()
	second := NewID()
	index.Register(first, "Assets/a.png")

	index.Register(first, "Assets/b.png")
	index.Register(second, "assets/A.png")
	index.Register(NilID, "Assets/c.png")
	index.Register(second, "")

	if index.Len() != 1 {
		t.Fatalf("expected one entry, got %d", index.Len())
	}
	if index.PathOf(first) != "Assets/a.png" || index.ContainsID(second) {
		t.Fatalf("conflicting registrations changed the index")
	}
}

func TestIndexSortedListings(t *testing.T) {
	index := NewIndex()
	for _, path := range []string{"Assets/b.png", "Assets/C.png", "Assets/a.png"} {
		index.Register(NewID(), path)
	}
	paths := index.Paths()
	want := []string{"Assets/a.png", "Assets/b.png", "Assets/C.png"}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("unexpected order %v", paths)
		}
	}
	ids := index.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1].String() > ids[i].String() {
			t.Fatalf("ids not sorted: %v", ids)
		}
	}

	index.Clear()
	if index.Len() != 0 || len(index.Paths()) != 0 {
		t.Fatalf("expected empty index after Clear")
	}
}

func TestIndexConcurrentRegister(t *testing.T) {
	index := NewIndex()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			index.Register(NewID(), "Assets/shared.png")
		}()
	}
	wg.Wait()
	if index.Len() != 1 {
		t.Fatalf("expected exactly one winner, got %d", index.Len())
	}
}
