// Package feistel implements a keyed, invertible pseudorandom permutation over
// an arbitrary integer domain [0, n).
//
// The permutation is a balanced Feistel network over the smallest power of
// four not below n, with BLAKE2b as the round function. Values that land
// outside [0, n) are fed back through the network ("cycle walking") until they
// fall inside the domain, which keeps the mapping a bijection on [0, n).
//
// # Usage
//
//	p := feistel.Precompute(n)
//	keys := []feistel.Index{1, 2, 3, 4}
//	j := feistel.Permute(n, i, keys, p)
//	i == feistel.InvertPermute(n, j, keys, p) // always true
package feistel

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Index is an element of the permutation domain.
type Index = uint64

// Rounds is the number of Feistel rounds. Keys beyond the first Rounds are
// ignored.
const Rounds = 3

// Precomputed holds the bit masks for a domain. It depends only on the domain
// size and can be shared by any number of goroutines.
type Precomputed struct {
	LeftMask  Index
	RightMask Index
	HalfBits  uint
}

// MaxElements is the largest supported domain, 4^31. Wider domains would
// need masks past 64 bits.
const MaxElements Index = 1 << 62

// Precompute derives the masks for a domain of numElements values. It panics
// when numElements exceeds [MaxElements].
func Precompute(numElements Index) Precomputed {
	if numElements > MaxElements {
		panic(fmt.Sprintf("feistel: domain %d exceeds %d", numElements, MaxElements))
	}
	nextPow4 := Index(4)
	log4 := uint(1)
	for nextPow4 < numElements {
		nextPow4 *= 4
		log4++
	}
	return Precomputed{
		LeftMask:  ((1 << log4) - 1) << log4,
		RightMask: (1 << log4) - 1,
		HalfBits:  log4,
	}
}

// Permute maps index to its image under the permutation keyed by keys.
// index must be below numElements.
func Permute(numElements, index Index, keys []Index, p Precomputed) Index {
	u := encode(index, keys, p)
	for u >= numElements {
		u = encode(u, keys, p)
	}
	return u
}

// InvertPermute is the inverse of [Permute].
func InvertPermute(numElements, index Index, keys []Index, p Precomputed) Index {
	u := decode(index, keys, p)
	for u >= numElements {
		u = decode(u, keys, p)
	}
	return u
}

func encode(index Index, keys []Index, p Precomputed) Index {
	left := (index & p.LeftMask) >> p.HalfBits
	right := index & p.RightMask

	for _, key := range keys[:Rounds] {
		left, right = right, left^round(right, key, p.RightMask)
	}
	return (left << p.HalfBits) | right
}

func decode(index Index, keys []Index, p Precomputed) Index {
	left := (index & p.LeftMask) >> p.HalfBits
	right := index & p.RightMask

	for i := Rounds - 1; i >= 0; i-- {
		left, right = right^round(left, keys[i], p.RightMask), left
	}
	return (left << p.HalfBits) | right
}

// round is the Feistel round function: BLAKE2b over the big-endian half and
// key, truncated to the half width.
func round(half, key, mask Index) Index {
	var data [16]byte
	binary.BigEndian.PutUint64(data[0:8], half)
	binary.BigEndian.PutUint64(data[8:16], key)
	sum := blake2b.Sum512(data[:])
	return binary.BigEndian.Uint64(sum[0:8]) & mask
}
