package tutor

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// BulletMarker prefixes each amendment line
const BulletMarker = "- "

// AmendInstruction appends each non-empty adjustment line, as written, to the
// existing instruction as a bullet, after trimming the instruction's trailing
// whitespace.
func AmendInstruction(existing, adjustment string) string {
	lines := lo.FilterMap(strings.Split(adjustment, "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSuffix(line, "\r")
		return BulletMarker + line, strings.TrimSpace(line) != ""
	})

	existing = strings.TrimRightFunc(existing, unicode.IsSpace)
	if len(lines) == 0 {
		return existing
	}
	return existing + "\n" + strings.Join(lines, "\n")
}
