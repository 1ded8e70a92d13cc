package keyspace

import (
	"errors"
	"fmt"
	"math"
)

// DefaultAlphabet is the classic lowercase search alphabet.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz"

var (
	// ErrOverflow is returned when A^length does not fit in a uint64.
	ErrOverflow = errors.New("keyspace: combinations overflow uint64")
	// ErrBadLength is returned for a zero, negative, or over-limit length.
	ErrBadLength = errors.New("keyspace: unsupported length")
	// ErrBadSymbol is returned when a candidate contains a byte outside the alphabet.
	ErrBadSymbol = errors.New("keyspace: symbol not in alphabet")
	// ErrBadAlphabet is returned when an alphabet is empty or has duplicate symbols.
	ErrBadAlphabet = errors.New("keyspace: invalid alphabet")
)

// Indexer is a total bijection between the dense index range [0, A^L) and
// the set of length-L strings over an A-symbol alphabet. Index 0 maps to the
// string of all first-symbols; the least significant position is the last
// character (mixed-radix, base A, most significant symbol first).
//
// An Indexer is immutable after construction and safe for concurrent use.
type Indexer struct {
	alphabet  []byte
	pos       [256]int // byte -> symbol position, -1 if absent
	maxLength int      // largest L for which A^L fits in uint64
}

// New builds an Indexer over the given alphabet. The alphabet must be
// non-empty, single-byte symbols, with no duplicates.
func New(alphabet string) (*Indexer, error) {
	if len(alphabet) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrBadAlphabet)
	}
	ix := &Indexer{alphabet: []byte(alphabet)}
	for i := range ix.pos {
		ix.pos[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		b := alphabet[i]
		if ix.pos[b] != -1 {
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrBadAlphabet, b)
		}
		ix.pos[b] = i
	}

	// Largest L with A^L <= MaxUint64. A=1 degenerates to every length
	// mapping to the single possible string; cap it at a sane bound.
	a := uint64(len(alphabet))
	if a == 1 {
		ix.maxLength = 64
	} else {
		l, acc := 0, uint64(1)
		for acc <= math.MaxUint64/a {
			acc *= a
			l++
		}
		ix.maxLength = l
	}
	return ix, nil
}

// Size returns the number of symbols in the alphabet.
func (ix *Indexer) Size() int { return len(ix.alphabet) }

// Alphabet returns the alphabet as a string.
func (ix *Indexer) Alphabet() string { return string(ix.alphabet) }

// MaxLength returns the largest candidate length for which Combinations
// does not overflow. For the 26-letter lowercase alphabet this is 13.
func (ix *Indexer) MaxLength() int { return ix.maxLength }

// Combinations returns A^length, the size of the keyspace for the given
// candidate length. Lengths outside [1, MaxLength] fail rather than wrap.
func (ix *Indexer) Combinations(length int) (uint64, error) {
	if length < 1 {
		return 0, fmt.Errorf("%w: %d", ErrBadLength, length)
	}
	if length > ix.maxLength {
		return 0, fmt.Errorf("%w: length %d exceeds max %d for a %d-symbol alphabet",
			ErrOverflow, length, ix.maxLength, len(ix.alphabet))
	}
	total := uint64(1)
	a := uint64(len(ix.alphabet))
	for i := 0; i < length; i++ {
		total *= a
	}
	return total, nil
}

// Encode maps index to its candidate string of exactly length symbols.
// The caller must ensure index < Combinations(length); higher indices wrap
// into the same range, which the search drivers never rely on.
func (ix *Indexer) Encode(index uint64, length int) string {
	buf := make([]byte, length)
	ix.EncodeTo(buf, index)
	return string(buf)
}

// EncodeTo writes the candidate for index into buf, whose length selects the
// candidate length. It allocates nothing, so the hot search loops can reuse
// one buffer per worker.
func (ix *Indexer) EncodeTo(buf []byte, index uint64) {
	a := uint64(len(ix.alphabet))
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = ix.alphabet[index%a]
		index /= a
	}
}

// Decode is the inverse of Encode: it maps a candidate back to its index.
// Every byte must belong to the alphabet.
func (ix *Indexer) Decode(candidate string) (uint64, error) {
	if len(candidate) < 1 || len(candidate) > ix.maxLength {
		return 0, fmt.Errorf("%w: %d", ErrBadLength, len(candidate))
	}
	a := uint64(len(ix.alphabet))
	var index uint64
	for i := 0; i < len(candidate); i++ {
		p := ix.pos[candidate[i]]
		if p < 0 {
			return 0, fmt.Errorf("%w: %q at position %d", ErrBadSymbol, candidate[i], i)
		}
		index = index*a + uint64(p)
	}
	return index, nil
}

// Validate checks that secret is a legal search target: non-empty, within
// MaxLength, and drawn entirely from the alphabet. It is run before any
// search begins; a failure here aborts the whole run.
func (ix *Indexer) Validate(secret string) error {
	if len(secret) < 1 {
		return fmt.Errorf("%w: empty secret", ErrBadLength)
	}
	if len(secret) > ix.maxLength {
		return fmt.Errorf("%w: secret length %d exceeds max %d",
			ErrBadLength, len(secret), ix.maxLength)
	}
	for i := 0; i < len(secret); i++ {
		if ix.pos[secret[i]] < 0 {
			return fmt.Errorf("%w: %q at position %d", ErrBadSymbol, secret[i], i)
		}
	}
	return nil
}
