package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "café", sanitizeUTF8("café"))
	assert.Equal(t, "ab", sanitizeUTF8("a\xffb"))
}

func TestRecordIDIsStable(t *testing.T) {
	a := recordID("https://example.com/", 0)
	assert.Equal(t, a, recordID("https://example.com/", 0))
	assert.NotEqual(t, a, recordID("https://example.com/", 1))
}
