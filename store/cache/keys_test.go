package cache

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "clients:id:42", Key("clients", "id", "42"))
	assert.Equal(t, "settings", Key("settings"))
}

func TestHashKey(t *testing.T) {
	type filter struct {
		Published bool
		Limit     int
	}

	a := HashKey(filter{Published: true, Limit: 10})
	assert.Len(t, a, 16)
	assert.Equal(t, a, HashKey(filter{Published: true, Limit: 10}), "hash is stable")
	assert.NotEqual(t, a, HashKey(filter{Published: true, Limit: 20}))
	assert.NotEmpty(t, HashKey(make(chan int)), "unserializable values still hash")
}

func TestNamespacePattern(t *testing.T) {
	re := regexp.MustCompile(NamespacePattern("events"))
	assert.True(t, re.MatchString("events:filtered:abc"))
	assert.False(t, re.MatchString("eventsx:id:1"))
	assert.False(t, re.MatchString("clients:events:1"))

	dotted := regexp.MustCompile(NamespacePattern("a.b"))
	assert.True(t, dotted.MatchString("a.b:1"))
	assert.False(t, dotted.MatchString("axb:1"))
}
