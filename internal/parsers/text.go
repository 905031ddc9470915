package parsers

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// DecodeSource turns raw source bytes into text without ever failing.
// UTF-8 is used as is, UTF-16 is recognized by its BOM and anything else is
// read as Windows-1252, the usual code page of legacy Delphi sources.
func DecodeSource(data []byte) string {
	if bytes.HasPrefix(data, utf16LEBOM) || bytes.HasPrefix(data, utf16BEBOM) {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err == nil {
			return string(decoded)
		}
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}

// extractBlockBody finds the first `begin` at or after start and returns the
// text up to its matching `end`. Nested begin/case/try/asm blocks are balanced;
// comments and string literals are skipped.
func extractBlockBody(content string, start int) (string, bool) {
	depth := 0
	bodyStart := -1

	i := start
	for i < len(content) {
		c := content[i]
		switch {
		case c == '{':
			i = skipPast(content, i+1, "}")
		case c == '(' && i+1 < len(content) && content[i+1] == '*':
			i = skipPast(content, i+2, "*)")
		case c == '/' && i+1 < len(content) && content[i+1] == '/':
			i = skipPast(content, i+2, "\n")
		case c == '\'':
			i = skipPast(content, i+1, "'")
		case isIdentStart(c):
			wordStart := i
			for i < len(content) && isIdentChar(content[i]) {
				i++
			}
			switch strings.ToLower(content[wordStart:i]) {
			case "begin":
				if bodyStart < 0 {
					bodyStart = i
				}
				depth++
			case "case", "try", "asm":
				if bodyStart >= 0 {
					depth++
				}
			case "end":
				if bodyStart < 0 {
					continue
				}
				depth--
				if depth == 0 {
					return strings.TrimSpace(content[bodyStart:wordStart]), true
				}
			}
		default:
			i++
		}
	}
	return "", false
}

// skipPast returns the index right after the next occurrence of terminator
func skipPast(content string, from int, terminator string) int {
	if from > len(content) {
		return len(content)
	}
	idx := strings.Index(content[from:], terminator)
	if idx < 0 {
		return len(content)
	}
	return from + idx + len(terminator)
}

// headerEnd returns the index after the `;` that terminates a routine header,
// ignoring semicolons inside the parameter list
func headerEnd(content string, from int) int {
	depth := 0
	for i := from; i < len(content); i++ {
		switch content[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(content)
}

// nextWord returns the next identifier at or after from, lowercased
func nextWord(content string, from int) string {
	i := from
	for i < len(content) && !isIdentStart(content[i]) {
		if content[i] != ' ' && content[i] != '\t' && content[i] != '\r' && content[i] != '\n' {
			return ""
		}
		i++
	}
	start := i
	for i < len(content) && isIdentChar(content[i]) {
		i++
	}
	return strings.ToLower(content[start:i])
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
