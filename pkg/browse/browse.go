// Package browse implements the navigation algorithm of the viewer: given
// the name of the current image and a set of candidate names, it picks the
// next or previous one under a human-friendly ordering, with wraparound,
// or a seeded pseudo-random ordering that visits every candidate exactly
// once per cycle.
package browse

import (
	"encoding/binary"
	"hash/fnv"
)

// Direction selects which neighbour of the current item to move to.
type Direction int

const (
	// Left moves to the previous item in the active ordering.
	Left Direction = iota
	// Right moves to the next item.
	Right
)

// Mode selects the ordering the navigation step runs under.
type Mode struct {
	// Random replaces the natural-name ordering with a hash ordering
	// derived from Seed. Stepping Right repeatedly in Random mode visits
	// every candidate exactly once before returning to the start, and the
	// cycle is reproducible for a given seed.
	Random bool
	Seed   uint64
}

// Request is one navigation step: a direction under a mode.
type Request struct {
	Direction Direction
	Mode      Mode
}

// Ready-made requests for the common steps.
var (
	Next = Request{Direction: Right}
	Prev = Request{Direction: Left}
)

// Shuffle returns a Right step under the random ordering seeded by seed.
func Shuffle(seed uint64) Request {
	return Request{Direction: Right, Mode: Mode{Random: true, Seed: seed}}
}

// item is a candidate decorated with its ordering key. In Simple mode the
// key is the name itself; in Random mode it is (hash, name), with the name
// breaking hash ties so the order stays strict.
type item struct {
	hash   uint64
	hashed bool
	name   string
	idx    int
}

func (req Request) keyFor(name string, idx int) item {
	it := item{name: name, idx: idx}
	if req.Mode.Random {
		it.hashed = true
		it.hash = hashName(req.Mode.Seed, name)
	}
	return it
}

// hashName derives the Random-mode sort key for a name. FNV-1a is fast and
// non-cryptographic, which is all this needs: the inputs are local file
// names, not untrusted data.
func hashName(seed uint64, name string) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	h.Write(buf[:])
	h.Write([]byte(name))
	return h.Sum64()
}

// compareItems orders two items under their keys.
func compareItems(a, b item) int {
	if a.hashed {
		if a.hash < b.hash {
			return -1
		}
		if a.hash > b.hash {
			return 1
		}
	}
	return Compare(a.name, b.name)
}

func (d Direction) after(a, b item) bool {
	c := compareItems(a, b)
	if d == Left {
		c = -c
	}
	return c > 0
}

func (d Direction) before(a, b item) bool {
	c := compareItems(a, b)
	if d == Left {
		c = -c
	}
	return c < 0
}

// findNext runs the single linear scan shared by every navigation flavour.
// It tracks two candidates at once: the smallest item after current in the
// step's direction, and the smallest item overall as the wraparound
// fallback. Candidates equal to the current name are skipped, so a set
// containing only the current item yields no result.
//
// current does not have to be a member of names; its key still anchors the
// "after" comparisons either way.
func findNext(req Request, current string, names []string) (string, int, bool) {
	cur := req.keyFor(current, -1)

	var next, wrapped *item

	for idx, name := range names {
		if name == current {
			continue
		}
		this := req.keyFor(name, idx)

		if wrapped == nil || req.Direction.before(this, *wrapped) {
			w := this
			wrapped = &w
		}

		if req.Direction.after(this, cur) && (next == nil || req.Direction.before(this, *next)) {
			n := this
			next = &n
		}
	}

	if next == nil {
		next = wrapped
	}
	if next == nil {
		return "", 0, false
	}
	return next.name, next.idx, true
}
