package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("ana@clube.com"))
	assert.False(t, IsEmail("ana@"))
	assert.False(t, IsEmail("Ana <ana@clube.com>"))
	assert.False(t, IsEmail("sem-arroba"))
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("+55 (11) 91234-5678"))
	assert.False(t, IsPhone("1234"))
	assert.False(t, IsPhone("11 9abc-5678"))
}
