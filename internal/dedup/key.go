// Package dedup computes fast structural-equality keys for the object
// pool's leaf interning table.
package dedup

import "github.com/cespare/xxhash/v2"

// Key hashes kind together with data, so that two values of different
// kinds never collide into the same key even when their raw bytes are
// identical (an Int and a Uid holding the same magnitude, for example).
func Key(kind int, data []byte) uint64 {
	h := xxhash.New()
	h.Write([]byte{byte(kind), byte(kind >> 8)})
	h.Write(data)
	return h.Sum64()
}

// KeyString is Key for a string payload, avoiding a []byte conversion
// at call sites that already hold a string.
func KeyString(kind int, s string) uint64 {
	h := xxhash.New()
	h.Write([]byte{byte(kind), byte(kind >> 8)})
	h.WriteString(s)
	return h.Sum64()
}
