package specialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisLookupCache_Key(t *testing.T) {
	c := NewRedisLookupCache(nil, "agentspec:spec:", 0, nil)
	assert.Equal(t, "agentspec:spec:a1", c.key("a1"))
}
