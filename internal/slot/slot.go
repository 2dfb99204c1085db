// Package slot implements the NaN-tagging convention that lets a single leaf
// slot hold either a bare payload pointer or a bucket-head pointer without a
// separate tag byte. It works because every payload and every bucket header
// the tree ever stores begins with a float32 field at offset zero: a payload
// begins with its own first float, a bucket header begins with its Label.
// Reading that first four bytes as a float32 and testing it for NaN tells
// the two cases apart; the engine only ever writes its own canonical NaN
// into a header's Label, but any NaN bit pattern is accepted on read so a
// caller-discovered collision fails loud (ErrReservedNaNPayload) rather than
// silently.
package slot

import (
	"math"
	"unsafe"
)

// labelBits is the exact bit pattern the engine writes into a bucket header's
// first field to mark it as a bucket head rather than a bare payload.
const labelBits uint32 = 0x7fc00001

// CanonicalNaN is the float32 value stored in a bucket header's Label field.
func CanonicalNaN() float32 { return math.Float32frombits(labelBits) }

// IsReserved reports whether v is a NaN bit pattern that would be
// misinterpreted as a bucket head if stored as a payload's leading float.
// It is deliberately broader than the one pattern the engine writes: any
// NaN collides, matching the detection rule in IsBucketHead.
func IsReserved(v float32) bool { return v != v }

// IsBucketHead reads the first four bytes that p points to as a float32 and
// reports whether they form a NaN, which by convention marks p as a pointer
// to a bucket header rather than a bare payload. p must be non-nil and must
// point to a record whose first field is a float32.
func IsBucketHead(p unsafe.Pointer) bool {
	v := *(*float32)(p)
	return v != v // NaN is the only float that is not equal to itself.
}
