package digest

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownAlgorithm is returned when looking up an unregistered algorithm.
var ErrUnknownAlgorithm = errors.New("digest: unknown algorithm")

// Tag is the fixed-size output of a digest algorithm. Two tags match only
// on full byte-wise equality; the search is not security-sensitive, so no
// constant-time comparison is required.
type Tag []byte

// Equal reports whether both tags have identical contents.
func (t Tag) Equal(other Tag) bool { return bytes.Equal(t, other) }

// String renders the tag as lowercase hex.
func (t Tag) String() string { return hex.EncodeToString(t) }

// ParseTag decodes a hex-rendered tag, as carried in job broadcasts.
func ParseTag(s string) (Tag, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("digest: bad tag %q: %w", s, err)
	}
	return Tag(b), nil
}

// Oracle computes fixed-size tags over candidate bytes. Implementations are
// pure functions of their input and safe for concurrent use; the search
// drivers share one Oracle across all workers.
type Oracle interface {
	// Name returns the registry name of the algorithm.
	Name() string
	// Size returns the tag size in bytes.
	Size() int
	// Sum computes the tag of candidate.
	Sum(candidate []byte) Tag
}

var registry = map[string]func() Oracle{}

// Register makes an algorithm available under its name. Called from init;
// not safe for concurrent use with New.
func Register(name string, fn func() Oracle) { registry[name] = fn }

// New returns the Oracle registered under name, or ErrUnknownAlgorithm.
func New(name string) (Oracle, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownAlgorithm, name, Names())
	}
	return fn(), nil
}

// Names lists the registered algorithms in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
