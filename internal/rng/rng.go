// Package rng provides the single seedable random source the simulation draws from.
package rng

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
)

// Source is everything the engine needs from a random generator.
// *math/rand/v2.Rand satisfies it as well.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// SeedFromString returns a 64-bit seed from an arbitrary string using SHA256.
func SeedFromString(s string) uint64 {
	h := sha256.Sum256([]byte(s))
	return binary.LittleEndian.Uint64(h[:8])
}

// Derive returns a child seed for a stable label such as "journey" or "run:2".
func Derive(base uint64, label string) uint64 {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, base)
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(label))
	sum := m.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

var seedAlphabet = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// NewSeedText returns a fresh human-typeable seed.
func NewSeedText() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random seed: %w", err)
	}
	return strings.ToLower(seedAlphabet.EncodeToString(buf)), nil
}

// splitMix64 is the deterministic generator behind Stream.
type splitMix64 struct{ state uint64 }

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Stream is a deterministic random stream with labelled children.
type Stream struct {
	base uint64
	sm   *splitMix64
}

// NewStream seeds a stream from a raw 64-bit value.
func NewStream(seed uint64) *Stream {
	return &Stream{base: seed, sm: &splitMix64{state: seed}}
}

// FromText seeds a stream from seed text. Empty text is rejected.
func FromText(seedText string) (*Stream, error) {
	if seedText == "" {
		return nil, fmt.Errorf("seed text must not be empty")
	}
	return NewStream(SeedFromString(seedText)), nil
}

// IntN returns a value in [0,n). It returns 0 when n <= 0.
func (s *Stream) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.sm.next() % uint64(n))
}

// Float64 returns a float in [0,1).
func (s *Stream) Float64() float64 {
	return float64(s.sm.next()>>11) / (1 << 53)
}

// Child creates a stable sub-stream derived from this stream's seed and label.
func (s *Stream) Child(label string) *Stream { return NewStream(Derive(s.base, label)) }
