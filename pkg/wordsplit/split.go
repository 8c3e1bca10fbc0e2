// Package wordsplit implements the POSIX-shell-like word splitter used
// whenever a raw unit-file value must be consumed as argv (§4.C). It mirrors
// systemd's extract_first_word()/config_parse_strv() family: whitespace
// outside quotes separates words, quoted fragments may be concatenated with
// unquoted ones, and double-quoted fragments support C-style escapes.
package wordsplit

import (
	"strconv"
	"strings"
)

// Flag tunes how Split treats quoting and escaping, mirroring the
// SplitRelax/SplitUnquote/SplitCUnescape/SplitRetainEscape modes systemd's
// lookup helpers select between.
type Flag uint8

const (
	// Relax tolerates a trailing, unterminated quote or backslash instead
	// of failing (used for ExecStart-style forgiving parses).
	Relax Flag = 1 << iota
	// Unquote strips quote characters from the emitted words.
	Unquote
	// CUnescape interprets backslash escape sequences (\n, \t, \xHH, ...).
	CUnescape
	// RetainEscape keeps a lone backslash in the output verbatim instead
	// of treating it as an escape introducer.
	RetainEscape
)

// WhitespaceSeparators is the default separator set: space, tab, newline,
// carriage return.
const WhitespaceSeparators = " \t\n\r"

// SplitError reports a malformed value that Split could not tokenize.
type SplitError struct {
	Msg string
}

func (e *SplitError) Error() string { return e.Msg }

// Split tokenizes value into argv-style words.
func Split(value string, seps string, flags Flag) ([]string, error) {
	if seps == "" {
		seps = WhitespaceSeparators
	}
	words := make([]string, 0, 4)
	runes := []rune(value)
	i := 0
	n := len(runes)

	isSep := func(r rune) bool { return strings.ContainsRune(seps, r) }

	for {
		for i < n && isSep(runes[i]) {
			i++
		}
		if i >= n {
			break
		}

		var word strings.Builder
		var quote rune // 0, '\'', or '"'
		sawAny := false
		for i < n {
			c := runes[i]
			switch {
			case quote != 0:
				if c == quote {
					if flags&Unquote == 0 {
						word.WriteRune(c)
					}
					quote = 0
					i++
					continue
				}
				if c == '\\' {
					consumed, esc, ok := parseEscape(runes, i+1, quote == '\'', flags)
					if !ok {
						if flags&Relax != 0 {
							word.WriteRune(c)
							i++
							continue
						}
						return nil, &SplitError{Msg: "invalid escape sequence inside quotes"}
					}
					word.WriteString(esc)
					i += 1 + consumed
					continue
				}
				word.WriteRune(c)
				i++
			case c == '\'' || c == '"':
				quote = c
				sawAny = true
				if flags&Unquote == 0 {
					word.WriteRune(c)
				}
				i++
			case c == '\\':
				consumed, esc, ok := parseEscape(runes, i+1, false, flags)
				if !ok {
					if flags&Relax != 0 {
						word.WriteRune(c)
						i++
						continue
					}
					return nil, &SplitError{Msg: "invalid escape sequence"}
				}
				word.WriteString(esc)
				i += 1 + consumed
			case isSep(c):
				goto wordDone
			default:
				word.WriteRune(c)
				i++
			}
		}
	wordDone:
		if quote != 0 {
			if flags&Relax == 0 {
				return nil, &SplitError{Msg: "unterminated quote"}
			}
		}
		if word.Len() > 0 || sawAny {
			words = append(words, word.String())
		}
	}

	return words, nil
}

// parseEscape interprets the escape sequence starting at runes[at] (i.e.
// just past the backslash). It returns how many runes it consumed, the
// decoded text to emit, and whether the sequence was recognized.
func parseEscape(runes []rune, at int, singleQuoted bool, flags Flag) (int, string, bool) {
	if at >= len(runes) {
		return 0, "", false
	}
	c := runes[at]

	if flags&RetainEscape != 0 && flags&CUnescape == 0 {
		return 1, "\\" + string(c), true
	}

	if singleQuoted {
		switch c {
		case '\\', '\'':
			return 1, string(c), true
		default:
			return 1, "\\" + string(c), true
		}
	}

	if flags&CUnescape == 0 {
		// Unquote-only mode: a backslash just escapes the next byte
		// literally, no C-style decoding.
		return 1, string(c), true
	}

	switch c {
	case 'a':
		return 1, "\a", true
	case 'b':
		return 1, "\b", true
	case 'f':
		return 1, "\f", true
	case 'n':
		return 1, "\n", true
	case 'r':
		return 1, "\r", true
	case 't':
		return 1, "\t", true
	case 'v':
		return 1, "\v", true
	case '\\':
		return 1, "\\", true
	case '"':
		return 1, "\"", true
	case '\'':
		return 1, "'", true
	case 's':
		return 1, " ", true
	case 'x':
		// \xHH: two hex digits after the introducer, 8-bit value.
		return decodeEscape(runes, at+1, 2, 16, true)
	case 'u':
		// \uHHHH: four hex digits, a Unicode code point.
		return decodeEscape(runes, at+1, 4, 16, false)
	case 'U':
		// \UHHHHHHHH: eight hex digits, a Unicode code point.
		return decodeEscape(runes, at+1, 8, 16, false)
	default:
		if c >= '0' && c <= '7' {
			// \NNN: three octal digits, the selector char is the first one.
			return decodeEscape(runes, at, 3, 8, true)
		}
		return 0, "", false
	}
}

// decodeEscape reads exactly width digits in the given base starting at
// digitsAt and returns the number of runes consumed measured from the
// escape's selector character (at, as passed into parseEscape), the decoded
// text, and whether the digits were valid.
func decodeEscape(runes []rune, digitsAt, width, base int, eightBit bool) (int, string, bool) {
	if digitsAt+width > len(runes) {
		return 0, "", false
	}
	digits := string(runes[digitsAt : digitsAt+width])
	if !validDigits(digits, base) {
		return 0, "", false
	}
	val, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return 0, "", false
	}

	// consumed is measured from the selector character itself: for \xHH
	// the selector 'x' plus the digit width; for octal the selector char
	// IS the first digit, so consumed is exactly the digit width.
	consumed := width
	if base == 16 {
		consumed = 1 + width
	}

	if eightBit && base == 16 {
		return consumed, string(rune(val)), true
	}
	if val == 0 {
		return 0, "", false
	}
	if val > 0x10FFFF {
		return 0, "", false
	}
	return consumed, string(rune(val)), true
}

func validDigits(s string, base int) bool {
	for _, r := range s {
		switch base {
		case 16:
			if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
				return false
			}
		case 8:
			if r < '0' || r > '7' {
				return false
			}
		}
	}
	return true
}
