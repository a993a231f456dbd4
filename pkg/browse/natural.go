package browse

import "strings"

// Compare orders two file names the way a human reads them: embedded runs
// of ASCII digits are compared as numbers rather than character by
// character, so "img2" sorts before "img10". Everything else falls back to
// plain byte comparison.
//
// Both strings are walked token by token, where a token is either a full
// digit run or a single byte. Comparing whole runs keeps the order
// transitive even when two names share a prefix that ends inside a run
// ("a1b" vs "a10": the runs 1 and 10 decide, not the bytes after the
// shared "a1"). The result is a strict total order, safe as a sort key.
func Compare(a, b string) int {
	ia, ib := 0, 0
	for ia < len(a) && ib < len(b) {
		if isDigit(a[ia]) && isDigit(b[ib]) {
			ra := leadingDigits(a[ia:])
			rb := leadingDigits(b[ib:])
			if c := compareDigitRuns(ra, rb); c != 0 {
				return c
			}
			ia += len(ra)
			ib += len(rb)
			continue
		}
		if a[ia] != b[ib] {
			if a[ia] < b[ib] {
				return -1
			}
			return 1
		}
		ia++
		ib++
	}

	switch {
	case ia < len(a):
		return 1
	case ib < len(b):
		return -1
	}

	// Every token matched. Distinct strings can still land here when digit
	// runs differ only in zero padding ("a01" vs "a1"); byte order breaks
	// the tie so the order stays strict.
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// leadingDigits returns the maximal run of ASCII digits at the start of s.
func leadingDigits(s string) string {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return s[:i]
		}
	}
	return s
}

// compareDigitRuns compares two non-empty digit runs as unsigned integers
// of arbitrary length. Leading zeros are ignored; after that, a longer run
// is a larger number and equal-length runs compare bytewise.
func compareDigitRuns(x, y string) int {
	x = strings.TrimLeft(x, "0")
	y = strings.TrimLeft(y, "0")
	if len(x) != len(y) {
		if len(x) < len(y) {
			return -1
		}
		return 1
	}
	return strings.Compare(x, y)
}
