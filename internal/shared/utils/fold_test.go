package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "nguyen nhat anh", Fold("  Nguyễn  Nhật Ánh "))
	assert.Equal(t, "dang", Fold("Đặng"))
	assert.Equal(t, "le guin", Fold("Le Guin"))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Ursula K. Le Guin", "le gu"))
	assert.True(t, Contains("Gabriel García Márquez", "garcia"))
	assert.False(t, Contains("Leckie", "guin"))
	assert.True(t, Contains("anything", ""))
}
