package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	// Known SHA-256 vector.
	assert.Equal(t,
		"5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		HashPassword("password"))
}

func TestHashPasswordIsDeterministic(t *testing.T) {
	// The store looks sessions up by exact (email, hash) match, so the same
	// input must always produce the same digest.
	assert.Equal(t, HashPassword("passwd"), HashPassword("passwd"))
	assert.NotEqual(t, HashPassword("passwd"), HashPassword("Passwd"))
}
