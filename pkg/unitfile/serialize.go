package unitfile

import "strings"

// Serialize renders u back to unit-file text, in section/entry insertion
// order, reattaching any comments captured by Parse immediately above the
// section header or entry they preceded. It does not attempt to reproduce
// original line-continuations: every entry is written on a single line.
func Serialize(u *Unit) string {
	var b strings.Builder
	for i, s := range u.Sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range s.Comments {
			b.WriteString(c)
			b.WriteByte('\n')
		}
		b.WriteByte('[')
		b.WriteString(s.Name)
		b.WriteString("]\n")
		for _, e := range s.Entries {
			for _, c := range e.Comments {
				b.WriteString(c)
				b.WriteByte('\n')
			}
			b.WriteString(e.Key)
			b.WriteByte('=')
			b.WriteString(e.Value)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
