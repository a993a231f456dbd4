package config

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// ByteSize is a byte count with TOML-friendly string parsing. Accepts
// human forms like "512 MB", "1GiB" or plain "1073741824".
type ByteSize int64

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (b *ByteSize) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*b = 0
		return nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > math.MaxInt64 {
		return fmt.Errorf("size %q overflows", s)
	}
	*b = ByteSize(n)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML serialization.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// String renders the size in IEC units. Negative values clamp to zero
// rather than wrapping around into exabytes.
func (b ByteSize) String() string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}
