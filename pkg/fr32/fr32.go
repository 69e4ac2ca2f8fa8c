// Package fr32 maps 32-byte nodes to and from elements of the BLS12-381
// scalar field.
//
// Nodes are little-endian encodings of field elements. [SafeElement] is the
// total mapping used for digests: it clears the two most significant bits,
// which always yields a value below the field modulus. [Element] is the strict
// decoding used for stored node data and rejects non-canonical input.
package fr32

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// NodeSize is the size in bytes of one node.
const NodeSize = fr.Bytes

// ErrInvalidElement is returned for bytes that are not a canonical
// little-endian field element.
var ErrInvalidElement = errors.New("invalid field element")

// SafeElement maps the first NodeSize bytes of b to a field element.
// It never fails: the top two bits of the last byte are ignored.
func SafeElement(b []byte) fr.Element {
	var buf [NodeSize]byte
	copy(buf[:], b)
	buf[NodeSize-1] &= 0x3f

	e, err := fr.LittleEndian.Element(&buf)
	if err != nil {
		// 2^254 is below the modulus.
		panic(fmt.Sprintf("fr32: safe reduction produced non-canonical value: %v", err))
	}
	return e
}

// Element decodes a canonical little-endian field element.
func Element(b []byte) (fr.Element, error) {
	if len(b) != NodeSize {
		return fr.Element{}, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidElement, len(b), NodeSize)
	}
	e, err := fr.LittleEndian.Element((*[NodeSize]byte)(b))
	if err != nil {
		return fr.Element{}, fmt.Errorf("%w: %v", ErrInvalidElement, err)
	}
	return e, nil
}

// PutElement writes the little-endian encoding of e into dst, which must hold
// at least NodeSize bytes.
func PutElement(dst []byte, e fr.Element) {
	fr.LittleEndian.PutElement((*[NodeSize]byte)(dst[:NodeSize]), e)
}

// Bytes returns the little-endian encoding of e.
func Bytes(e fr.Element) []byte {
	b := make([]byte, NodeSize)
	PutElement(b, e)
	return b
}

// Encode returns v + k.
func Encode(v, k fr.Element) fr.Element {
	var out fr.Element
	out.Add(&v, &k)
	return out
}

// Decode returns c - k, inverting [Encode].
func Decode(c, k fr.Element) fr.Element {
	var out fr.Element
	out.Sub(&c, &k)
	return out
}
