package browse

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestCompareNumericRuns(t *testing.T) {
	cases := []struct {
		a, b string
		want int // sign only
	}{
		{"img2", "img10", -1},
		{"img10", "img2", 1},
		{"img2", "img2", 0},
		{"a", "b", -1},
		{"a10b2", "a10b10", -1},
		{"9", "10", -1},
		{"file", "file2", -1},
		{"a01", "a1", -1},  // numerically equal, byte order breaks the tie
		{"a2b", "a10", -1}, // digit run decides before the rest
		{"", "a", -1},
		{"", "", 0},
		{"100", "20", 1},
	}

	for _, tc := range cases {
		got := Compare(tc.a, tc.b)
		if sign(got) != tc.want {
			t.Errorf("Compare(%q, %q) = %d, want sign %d", tc.a, tc.b, got, tc.want)
		}
		if sign(Compare(tc.b, tc.a)) != -tc.want {
			t.Errorf("Compare(%q, %q) not antisymmetric", tc.b, tc.a)
		}
	}
}

func TestCompareSortsNaturally(t *testing.T) {
	names := []string{"img10", "img2", "img1", "a", "img02", "z9", "z10"}
	sort.Slice(names, func(i, j int) bool { return Compare(names[i], names[j]) < 0 })

	want := []string{"a", "img1", "img02", "img2", "img10", "z9", "z10"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", names, want)
		}
	}
}

// TestCompareTransitiveAcrossRunBoundary pins the case where a digit run
// straddles the end of a shared prefix: "a1b" and "a10" share "a1", but
// the runs 1 and 10 must decide, not the bytes after the prefix.
func TestCompareTransitiveAcrossRunBoundary(t *testing.T) {
	if Compare("a1b", "a2") >= 0 {
		t.Error("a1b should sort before a2")
	}
	if Compare("a2", "a10") >= 0 {
		t.Error("a2 should sort before a10")
	}
	if Compare("a1b", "a10") >= 0 {
		t.Error("a1b should sort before a10")
	}

	// Exhaustive transitivity over a set built to hit the boundary.
	names := []string{"a1b", "a2", "a10", "a01", "a1", "a10c", "z"}
	for _, x := range names {
		for _, y := range names {
			for _, z := range names {
				if Compare(x, y) < 0 && Compare(y, z) < 0 && Compare(x, z) >= 0 {
					t.Fatalf("intransitive: %q < %q < %q but Compare(%q, %q) = %d",
						x, y, z, x, z, Compare(x, z))
				}
			}
		}
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func TestFindNextSimpleNeighbours(t *testing.T) {
	names := []string{"a", "b", "c", "d"}

	for i := 0; i < len(names)-1; i++ {
		name, idx, ok := findNext(Request{Direction: Right}, names[i], names)
		if !ok || name != names[i+1] || idx != i+1 {
			t.Errorf("next after %q = %q/%d/%v, want %q/%d", names[i], name, idx, ok, names[i+1], i+1)
		}
	}
	for i := 1; i < len(names); i++ {
		name, idx, ok := findNext(Request{Direction: Left}, names[i], names)
		if !ok || name != names[i-1] || idx != i-1 {
			t.Errorf("prev before %q = %q/%d/%v, want %q/%d", names[i], name, idx, ok, names[i-1], i-1)
		}
	}
}

func TestFindNextWraparound(t *testing.T) {
	names := []string{"a", "b", "c"}

	if name, _, ok := findNext(Request{Direction: Right}, "c", names); !ok || name != "a" {
		t.Errorf("next after max = %q/%v, want a", name, ok)
	}
	if name, _, ok := findNext(Request{Direction: Left}, "a", names); !ok || name != "c" {
		t.Errorf("prev before min = %q/%v, want c", name, ok)
	}
}

func TestFindNextEmptyAndLone(t *testing.T) {
	if _, _, ok := findNext(Request{Direction: Right}, "a", nil); ok {
		t.Error("expected no result for empty candidate set")
	}
	if _, _, ok := findNext(Request{Direction: Right}, "a", []string{"a"}); ok {
		t.Error("expected no result when the set only contains the current item")
	}
}

func TestFindNextCurrentAbsent(t *testing.T) {
	names := []string{"b", "d", "f"}

	// "c" sits between b and d; next should be d, previous should be b.
	if name, _, ok := findNext(Request{Direction: Right}, "c", names); !ok || name != "d" {
		t.Errorf("next after absent c = %q/%v, want d", name, ok)
	}
	if name, _, ok := findNext(Request{Direction: Left}, "c", names); !ok || name != "b" {
		t.Errorf("prev before absent c = %q/%v, want b", name, ok)
	}

	// Beyond the maximum: wraps to the minimum.
	if name, _, ok := findNext(Request{Direction: Right}, "z", names); !ok || name != "b" {
		t.Errorf("next after absent z = %q/%v, want b", name, ok)
	}
}

// TestSimpleCycle checks that repeated Right/Simple steps visit every
// member exactly once and return to the start after n steps.
func TestSimpleCycle(t *testing.T) {
	names := []string{"img1", "img2", "img10", "img20", "zz"}
	checkFullCycle(t, Request{Direction: Right}, names)
}

// TestSimpleCycleAcrossRunBoundary is the cycle property over names whose
// digit runs straddle a shared prefix; an intransitive comparator skips
// members here.
func TestSimpleCycleAcrossRunBoundary(t *testing.T) {
	names := []string{"a1b", "a2", "a10", "z"}
	checkFullCycle(t, Request{Direction: Right}, names)
	checkFullCycle(t, Request{Direction: Left}, names)
}

// TestRandomCycle checks the permutation property for several seeds: a
// full hash-ordered cycle with no repeats, reproducible per seed.
func TestRandomCycle(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g"}

	for trial := 0; trial < 20; trial++ {
		seed := rand.Uint64()
		req := Request{Direction: Right, Mode: Mode{Random: true, Seed: seed}}
		checkFullCycle(t, req, names)
	}
}

func TestRandomCycleReproducible(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	req := Request{Direction: Right, Mode: Mode{Random: true, Seed: 42}}

	walk := func() []string {
		var order []string
		current := "a"
		for i := 0; i < len(names); i++ {
			next, _, ok := findNext(req, current, names)
			if !ok {
				t.Fatal("cycle broke early")
			}
			order = append(order, next)
			current = next
		}
		return order
	}

	first, second := walk(), walk()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different cycles: %v vs %v", first, second)
		}
	}
}

func checkFullCycle(t *testing.T, req Request, names []string) {
	t.Helper()

	for _, start := range names {
		seen := map[string]bool{start: true}
		current := start
		for step := 0; step < len(names); step++ {
			next, _, ok := findNext(req, current, names)
			if !ok {
				t.Fatalf("no next from %q", current)
			}
			if step < len(names)-1 {
				if seen[next] {
					t.Fatalf("start %q: revisited %q after %d steps", start, next, step+1)
				}
			} else if next != start {
				t.Fatalf("start %q: cycle ended at %q after %d steps", start, next, step+1)
			}
			seen[next] = true
			current = next
		}
		if len(seen) != len(names) {
			t.Fatalf("start %q: visited %d of %d members", start, len(seen), len(names))
		}
	}
}

func TestListImageNamesFilters(t *testing.T) {
	dir := t.TempDir()

	touch(t, dir, "b.png")
	touch(t, dir, "a.jpeg")
	touch(t, dir, "notes.txt")
	touch(t, dir, "noext")
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := ListImageNames(dir)
	if err != nil {
		t.Fatalf("ListImageNames: %v", err)
	}

	want := map[string]bool{"a.jpeg": true, "b.png": true}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want keys %v", names, want)
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected entry %q", n)
		}
	}
}

func TestNextInDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png")
	touch(t, dir, "b.png")
	touch(t, dir, "c.png")

	current := filepath.Join(dir, "b.png")

	next, ok, err := NextInDirectory(current, Request{Direction: Right})
	if err != nil || !ok {
		t.Fatalf("NextInDirectory: ok=%v err=%v", ok, err)
	}
	if next != filepath.Join(dir, "c.png") {
		t.Errorf("next = %q, want c.png", next)
	}

	next, ok, err = NextInDirectory(next, Request{Direction: Right})
	if err != nil || !ok {
		t.Fatalf("NextInDirectory wrap: ok=%v err=%v", ok, err)
	}
	if next != filepath.Join(dir, "a.png") {
		t.Errorf("wrapped next = %q, want a.png", next)
	}
}

func TestNextInDirectoryMissingDir(t *testing.T) {
	_, _, err := NextInDirectory(filepath.Join(t.TempDir(), "gone", "x.png"), Request{Direction: Right})
	if err == nil {
		t.Error("expected error for unreadable parent directory")
	}
}

func TestNextInList(t *testing.T) {
	paths := []string{"/p/a.png", "/p/b.png", "/p/c.png"}

	idx, ok := NextInList(paths, "/p/c.png", Request{Direction: Right})
	if !ok || idx != 0 {
		t.Errorf("wrap idx = %d/%v, want 0", idx, ok)
	}
	idx, ok = NextInList(paths, "/p/a.png", Request{Direction: Left})
	if !ok || idx != 2 {
		t.Errorf("prev idx = %d/%v, want 2", idx, ok)
	}
	if _, ok := NextInList([]string{"/p/a.png"}, "/p/a.png", Request{Direction: Right}); ok {
		t.Error("expected no result for a single-entry list")
	}
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("touch %s: %v", name, err)
	}
}
