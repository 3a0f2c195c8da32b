package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// KeySeparator delimits namespaces in cache keys. Callers invalidate by
// namespace prefix, so changing it breaks every consumer.
const KeySeparator = ":"

// Key joins components into a namespaced cache key,
// e.g. Key("clients", "id", uid) == "clients:id:<uid>".
func Key(components ...string) string {
	return strings.Join(components, KeySeparator)
}

// HashKey renders a short stable hash of v, used to fold filter descriptors
// into a key such as "events:filtered:<hash>".
func HashKey(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", v))
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])[:16]
}

// NamespacePattern returns the InvalidatePattern expression matching every
// key under ns.
func NamespacePattern(ns string) string {
	return "^" + regexp.QuoteMeta(ns+KeySeparator)
}
