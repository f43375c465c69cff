package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionActive_LeaseBoundary(t *testing.T) {
	granted := time.Now().UTC()
	sub := &Subscription{
		Callback:  "https://reader.example/cb",
		Topic:     "https://example.com/feed",
		ExpiresAt: granted.Add(3600 * time.Second),
	}

	assert.True(t, sub.Active(granted.Add(3599*time.Second)))
	// The lease instant itself is already expired.
	assert.False(t, sub.Active(granted.Add(3600*time.Second)))
	assert.False(t, sub.Active(granted.Add(3601*time.Second)))
}
