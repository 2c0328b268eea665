// Package notation rewrites LaTeX math delimiters into the dollar-sign
// markers expected by markdown math renderers.
package notation

import "regexp"

var (
	// \[ ... \] may span lines
	blockMath = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)
	// \( ... \) stays on one line
	inlineMath = regexp.MustCompile(`\\\((.*?)\\\)`)
)

// Rewrite converts block math \[...\] to $$...$$ and inline math \(...\) to
// $...$. Every other character, markdown included, is left untouched.
func Rewrite(text string) string {
	text = replaceDelimited(blockMath, text, "$$")
	return replaceDelimited(inlineMath, text, "$")
}

func replaceDelimited(re *regexp.Regexp, text, marker string) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		inner := re.FindStringSubmatch(match)[1]
		return marker + inner + marker
	})
}
