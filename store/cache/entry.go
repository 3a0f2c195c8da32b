package cache

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/pkg/errors"
)

// entry is one cached value. The Store's map is its only owner.
type entry struct {
	key          string
	value        any // caller value, or encoded when compressed is set
	createdAt    time.Time
	expiresAt    time.Time
	lastAccessed time.Time
	accessCount  int64
	size         int
	compressed   bool

	// seq orders entries by insertion and breaks lastAccessed ties on eviction.
	seq uint64
}

// live reports whether the entry may still be served at now.
func (e *entry) live(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// elapsedFraction returns how much of the TTL has been used at now.
func (e *entry) elapsedFraction(now time.Time) float64 {
	total := e.expiresAt.Sub(e.createdAt)
	if total <= 0 {
		return 1
	}
	return float64(now.Sub(e.createdAt)) / float64(total)
}

// encoded is the serialized form of a value together with its dynamic type,
// so that decode can rebuild a value of the same type.
type encoded struct {
	data []byte
	typ  reflect.Type
}

func encode(v any) (encoded, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return encoded{}, err
	}
	return encoded{data: data, typ: reflect.TypeOf(v)}, nil
}

func (e encoded) decode() (any, error) {
	if e.typ == nil {
		return nil, nil
	}
	ptr := reflect.New(e.typ)
	if err := json.Unmarshal(e.data, ptr.Interface()); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", e.typ)
	}
	return ptr.Elem().Interface(), nil
}

// approxSize estimates the serialized size of v. Values that cannot be
// serialized count as zero.
func approxSize(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(data)
}
