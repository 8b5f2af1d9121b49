package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "quzz:wizard:session:abc", SessionKey("quzz:wizard", "abc"))
	assert.Equal(t, "quzz:wizard:lock:abc", LockKey("quzz:wizard", "abc"))
	assert.Equal(t, "quzz:ratelimit:10.0.0.1:/v1/x", BuildRateLimitKey("quzz", "10.0.0.1", "/v1/x"))
}
