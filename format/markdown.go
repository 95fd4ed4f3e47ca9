package format

import (
	"html"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownToHTML renders authored markdown (welcome banner, help text).
func MarkdownToHTML(text string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return string(markdown.ToHTML([]byte(text), p, renderer))
}

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

var (
	tagPattern        = regexp.MustCompile(`(?s)<[^>]*>`)
	breakPattern      = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEndPattern   = regexp.MustCompile(`(?i)</(p|div|tr|h[1-6]|li|table|thead|tbody)>`)
	cellEndPattern    = regexp.MustCompile(`(?i)</t[dh]>`)
	strongOpenPattern = regexp.MustCompile(`(?i)<(strong|b)(\s[^>]*)?>`)
	strongEndPattern  = regexp.MustCompile(`(?i)</(strong|b)>`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
)

// HTMLToTerminal reduces chat markup to terminal text. Bold labels become ANSI
// bold when color is true; every other tag is dropped.
func HTMLToTerminal(content string, color bool) string {
	bold, reset := "", ""
	if color {
		bold, reset = ansiBold, ansiReset
	}

	out := breakPattern.ReplaceAllString(content, "\n")
	out = cellEndPattern.ReplaceAllString(out, "\t")
	out = blockEndPattern.ReplaceAllString(out, "\n")
	out = strongOpenPattern.ReplaceAllString(out, bold)
	out = strongEndPattern.ReplaceAllString(out, reset)
	out = tagPattern.ReplaceAllString(out, "")
	out = html.UnescapeString(out)
	out = blankRunPattern.ReplaceAllString(out, "\n\n")
	return strings.TrimRight(out, "\n\t ")
}
