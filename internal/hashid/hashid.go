// Package hashid implements the Hasher: deterministic FNV-1a 32-bit
// hashing of canonical strings into stable u32 IDs, with collision
// resolution. Grounded on a comparable implementation's hash/fnv usage in
// internal/embed/static.go, applied here with the stdlib hash/fnv package
// directly (FNV-1a has no third-party implementation anywhere in the pack
// worth preferring over the standard library's hash/fnv.New32a — see
// DESIGN.md).
package hashid

import (
	"hash/fnv"
	"strconv"
)

// HashToID implements hashToId(s) -> u32: FNV-1a with offset basis
// 2166136261 and prime 16777619 over the UTF-8 bytes of s.
func HashToID(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// Resolver persists the (canonical string, id) pairs that collision
// resolution discovered, so a later run reproduces the same resolved ID for
// the same string instead of re-walking the collision chain against a
// differently-populated `existing` set.
type Resolver interface {
	// Lookup returns the previously resolved ID for s, if any.
	Lookup(s string) (uint32, bool)
	// Persist records that s resolved to id.
	Persist(s string, id uint32)
}

// GenerateStableID implements generateStableId(s, existing): returns
// HashToID(s) if that ID is absent from existing, otherwise probes
// s + "::" + k for increasing k >= 0 until an unused ID is found. If a
// Resolver is supplied and already holds a resolution for s, that
// resolution is returned directly without re-probing, guaranteeing that
// collisions discovered at ingest are reproduced identically on query.
func GenerateStableID(s string, existing map[uint32]struct{}, resolver Resolver) uint32 {
	if resolver != nil {
		if id, ok := resolver.Lookup(s); ok {
			return id
		}
	}

	id := HashToID(s)
	if _, taken := existing[id]; !taken {
		if resolver != nil {
			resolver.Persist(s, id)
		}
		return id
	}

	for k := 0; ; k++ {
		candidate := HashToID(suffixed(s, k))
		if _, taken := existing[candidate]; !taken {
			if resolver != nil {
				resolver.Persist(s, candidate)
			}
			return candidate
		}
	}
}

func suffixed(s string, k int) string {
	return s + "::" + strconv.Itoa(k)
}
