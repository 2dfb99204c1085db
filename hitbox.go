package collision

// Hitbox is the payload type the index stores. It is a plain fixed-size
// record: four floats, nothing else. A1 occupies offset zero, which is
// what lets the engine tell a bare Hitbox pointer apart from a bucket head
// by reading the first four bytes as a float32 (see internal/slot):
// ordinary hitbox data is never a NaN, so a NaN there unambiguously means
// "this is a bucket, not a hitbox."
//
// Callers must not store a Hitbox whose A1 is NaN; Insert rejects it with
// ErrReservedNaNPayload.
type Hitbox struct {
	A1, B1 float32
	A2, B2 float32
}
