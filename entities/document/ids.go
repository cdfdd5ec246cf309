package document

import "github.com/google/uuid"

// IDGenerator produces shape identifiers. It must never return the same value
// twice for one document.
type IDGenerator func() string

// ShapeIDPrefix is prepended to every generated identifier.
const ShapeIDPrefix = "shape_"

// UUIDv7 returns a generator of prefixed RFC 9562 version 7 UUIDs: time
// ordered and random in their low bits, so collisions do not happen in practice.
func UUIDv7(prefix string) IDGenerator {
	return func() string {
		return prefix + uuid.Must(uuid.NewV7()).String()
	}
}
