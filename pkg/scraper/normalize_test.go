package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	n, err := NewNormalizer("https://example.com/docs/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", n.Origin())

	tests := []struct {
		name      string
		candidate string
		base      string
		want      string
		ok        bool
	}{
		{name: "root relative", candidate: "/about", want: "https://example.com/about", ok: true},
		{name: "relative to root", candidate: "guide/intro", want: "https://example.com/docs/guide/intro", ok: true},
		{name: "relative to page", candidate: "next", base: "https://example.com/docs/guide/intro", want: "https://example.com/docs/guide/next", ok: true},
		{name: "strips query and fragment", candidate: "https://example.com/a?x=1#frag", want: "https://example.com/a", ok: true},
		{name: "fragment only", candidate: "#section", base: "https://example.com/a", want: "https://example.com/a", ok: true},
		{name: "default port", candidate: "https://example.com:443/a", want: "https://example.com/a", ok: true},
		{name: "uppercase host", candidate: "HTTPS://EXAMPLE.com", want: "https://example.com/", ok: true},
		{name: "other host", candidate: "https://other.com/a"},
		{name: "other scheme", candidate: "http://example.com/a"},
		{name: "other port", candidate: "https://example.com:8443/a"},
		{name: "mailto", candidate: "mailto:me@example.com"},
		{name: "javascript", candidate: "javascript:void(0)"},
		{name: "malformed host", candidate: "http://[::1"},
		{name: "malformed escape", candidate: "%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Normalize(tt.candidate, tt.base)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n, err := NewNormalizer("http://localhost:8080")
	require.NoError(t, err)

	for _, candidate := range []string{
		"/",
		"/a/b/../c",
		"http://LOCALHOST:8080/x?y=z",
		"page#top",
		"http://localhost:8080",
	} {
		first, ok := n.Normalize(candidate, "")
		require.True(t, ok, candidate)

		second, ok := n.Normalize(first, "")
		require.True(t, ok, first)
		assert.Equal(t, first, second)
	}
}

func TestNewNormalizerRejectsRelativeRoot(t *testing.T) {
	_, err := NewNormalizer("/docs")
	assert.Error(t, err)

	_, err = NewNormalizer("ftp://example.com")
	assert.Error(t, err)
}
