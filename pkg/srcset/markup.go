package srcset

import "strings"

// Markup renders the literal <img> tag shown next to the preview.
// The indentation matches the sandbox's code listing and srcset is trimmed.
func Markup(src, srcset string) string {
	var b strings.Builder
	b.WriteString("<img\n")
	b.WriteString(`      src="` + src + "\"\n")
	b.WriteString(`      srcset="` + strings.TrimSpace(srcset) + "\"\n")
	b.WriteString("    />")
	return b.String()
}
