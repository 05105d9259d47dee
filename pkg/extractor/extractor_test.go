package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/sitekb/pkg/extractor"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "strips tags",
			html: "<html><body><h1>Title</h1><p>Hello <b>world</b></p></body></html>",
			want: "Title Hello world",
		},
		{
			name: "removes script content",
			html: `<p>before</p><script type="text/javascript">var x = "<p>hidden</p>";</script><p>after</p>`,
			want: "before after",
		},
		{
			name: "removes style content case-insensitively",
			html: "<STYLE>body { color: red; }</STYLE><div>visible</div>",
			want: "visible",
		},
		{
			name: "removes multiline blocks",
			html: "<script>\nline1\nline2\n</script>\n<main>\n  text\n\n  more\n</main>",
			want: "text more",
		},
		{
			name: "collapses whitespace",
			html: "  a\t\tb\n\n\nc  ",
			want: "a b c",
		},
		{
			name: "collapses non-breaking spaces from entities",
			html: "<p>Hello&nbsp;&nbsp;world</p>",
			want: "Hello world",
		},
		{
			name: "collapses raw unicode spaces",
			html: "Hello\u00a0 \u00a0world\u2003again\u3000end",
			want: "Hello world again end",
		},
		{
			name: "collapses vertical tabs and line separators",
			html: "a\v\vb\u2028c\u0085d",
			want: "a b c d",
		},
		{
			name: "trims leading non-breaking space",
			html: "&nbsp;<p>text</p>&#160;",
			want: "text",
		},
		{
			name: "decodes entities",
			html: "<p>Fish &amp; Chips &lt;3</p>",
			want: "Fish & Chips <3",
		},
		{
			name: "empty input",
			html: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.Extract(tt.html))
		})
	}
}
