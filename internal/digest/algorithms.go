package digest

import (
	"crypto/md5"
	"encoding/binary"

	sha256 "github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
)

// DefaultAlgorithm matches the classic cracker behavior.
const DefaultAlgorithm = "md5"

func init() {
	Register("md5", func() Oracle { return md5Oracle{} })
	Register("sha256", func() Oracle { return sha256Oracle{} })
	Register("blake3", func() Oracle { return blake3Oracle{} })
	Register("xxh3", func() Oracle { return xxh3Oracle{} })
}

type md5Oracle struct{}

func (md5Oracle) Name() string { return "md5" }
func (md5Oracle) Size() int    { return md5.Size }
func (md5Oracle) Sum(candidate []byte) Tag {
	sum := md5.Sum(candidate)
	return sum[:]
}

// sha256Oracle uses the SIMD-accelerated implementation; on machines with
// SHA extensions it is considerably faster than crypto/sha256 for the tiny
// inputs this search hashes by the billion.
type sha256Oracle struct{}

func (sha256Oracle) Name() string { return "sha256" }
func (sha256Oracle) Size() int    { return sha256.Size }
func (sha256Oracle) Sum(candidate []byte) Tag {
	sum := sha256.Sum256(candidate)
	return sum[:]
}

type blake3Oracle struct{}

func (blake3Oracle) Name() string { return "blake3" }
func (blake3Oracle) Size() int    { return 32 }
func (blake3Oracle) Sum(candidate []byte) Tag {
	sum := blake3.Sum256(candidate)
	return sum[:]
}

// xxh3Oracle is not a cryptographic digest; it exists for benchmarking the
// coordination engine with hashing cost reduced to near zero.
type xxh3Oracle struct{}

func (xxh3Oracle) Name() string { return "xxh3" }
func (xxh3Oracle) Size() int    { return 8 }
func (xxh3Oracle) Sum(candidate []byte) Tag {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, xxh3.Hash(candidate))
	return out
}
