package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIdentity(t *testing.T) {
	h := HashIdentity("Fan@Example.com ")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashIdentity("fan@example.com"))
	assert.NotEqual(t, h, HashIdentity("other@example.com"))
}

func TestVoteMarkerKey(t *testing.T) {
	assert.Equal(t, "votes/12/"+HashIdentity("a@b.c"), VoteMarkerKey(12, "A@B.C"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("knight@camelot.org"))
	assert.False(t, IsValidEmail("knight"))
	assert.False(t, IsValidEmail("@camelot.org"))
	assert.False(t, IsValidEmail("knight@"))
	assert.False(t, IsValidEmail("sir knight@camelot.org"))
}
