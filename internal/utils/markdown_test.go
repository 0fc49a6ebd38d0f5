package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownBasics(t *testing.T) {
	out := string(RenderMarkdown("**bold** and [a link](https://example.com)"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `target="_blank"`)
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	out := string(RenderMarkdown("hello <script>alert(1)</script> world"))

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")
}

func TestRenderMarkdownKeepsImages(t *testing.T) {
	out := string(RenderMarkdown("![alt](https://example.com/pic.png)"))

	assert.True(t, strings.Contains(out, "<img"), "images are allowed by the policy")
}
