package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "plain paragraph",
			input:    "useEffect fires twice in strict mode.",
			contains: []string{"<p>useEffect fires twice in strict mode.</p>"},
		},
		{
			name:     "list and fenced code",
			input:    "- reproduced\n\n```js\nuseEffect(() => {})\n```",
			contains: []string{"<li>reproduced</li>", "<pre><code", "useEffect(() =&gt; {})"},
		},
		{
			name:     "emphasis and code",
			input:    "**Fast** builds with `go build`",
			contains: []string{"<strong>Fast</strong>", "<code>go build</code>"},
		},
		{
			name:     "external link",
			input:    "Docs at [react.dev](https://react.dev)",
			contains: []string{`href="https://react.dev"`, `rel="nofollow`, `target="_blank"`},
		},
		{
			name:     "script stripped",
			input:    "hello <script>alert(1)</script>",
			contains: []string{"hello"},
			excludes: []string{"<script", "alert(1)"},
		},
		{
			name:     "event handler stripped",
			input:    `<img src="x.png" onerror="alert(1)">`,
			excludes: []string{"onerror"},
		},
		{
			name:     "javascript url stripped",
			input:    "[click](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderMarkdown(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}
