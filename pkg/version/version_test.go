package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsVersion(t *testing.T) {
	got := Get()
	assert.Equal(t, strings.TrimSpace(Version), got)
}

func TestVersionNotEmpty(t *testing.T) {
	s := Get()
	assert.NotEmpty(t, s)
	assert.Equal(t, s, strings.TrimSpace(s))
}
