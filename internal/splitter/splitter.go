// Package splitter cuts decoded SQL script text into executable statements.
//
// The scan is a single left-to-right pass over an explicit finite-state
// machine. Statement boundaries are top-level semicolons; single-quoted
// strings, quoted identifiers, line comments, nested block comments, and
// dollar-quoted blocks are opaque to the boundary scan. This is what lets
// a function body full of internal semicolons travel to the server as one
// statement.
package splitter

import (
	"strings"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// mode is the current lexical mode of the scan. Modes are mutually
// exclusive; each transition is a function of the current mode and the
// next character (plus bounded lookahead for "--", "/*", and dollar tags).
type mode int

const (
	modeNormal mode = iota
	modeSingleQuoted
	modeQuotedIdent
	modeLineComment
	modeBlockComment
	modeDollarQuoted
)

func (m mode) String() string {
	switch m {
	case modeSingleQuoted:
		return "string"
	case modeQuotedIdent:
		return "quoted identifier"
	case modeLineComment:
		return "line comment"
	case modeBlockComment:
		return "block comment"
	case modeDollarQuoted:
		return "dollar-quoted block"
	default:
		return "normal"
	}
}

// Split scans text and returns its statements in source order. Statement
// text excludes the terminating semicolon and surrounding whitespace;
// comments inside a statement's span are preserved verbatim. Statements
// that are empty or consist only of comments are dropped.
//
// End of input inside an open string, quoted identifier, block comment,
// or dollar-quoted block returns a *pgsetup.LexError naming the open
// construct; no statements are returned in that case, so partially
// parseable input is never partially executed.
func Split(text string) ([]pgsetup.Statement, error) {
	var stmts []pgsetup.Statement

	m := modeNormal
	n := len(text)

	stmtStart := -1     // offset of the current statement's first byte, -1 outside a statement
	hasContent := false // statement contains something beyond comments and whitespace
	openOffset := 0     // where the currently open quote/comment/dollar construct began
	blockDepth := 0     // PostgreSQL block comments nest
	dollarTag := ""     // full delimiter, e.g. "$$" or "$body$"

	emit := func(end int) {
		body := strings.TrimSpace(text[stmtStart:end])
		if body == "" {
			return
		}
		stmts = append(stmts, pgsetup.Statement{
			Index:  len(stmts),
			Offset: stmtStart,
			Text:   body,
		})
	}

	i := 0
	for i < n {
		c := text[i]

		switch m {
		case modeNormal:
			switch {
			case c == ';':
				if hasContent {
					emit(i)
				}
				stmtStart = -1
				hasContent = false
				i++
			case c == '-' && i+1 < n && text[i+1] == '-':
				if stmtStart < 0 {
					stmtStart = i
				}
				m = modeLineComment
				i += 2
			case c == '/' && i+1 < n && text[i+1] == '*':
				if stmtStart < 0 {
					stmtStart = i
				}
				m = modeBlockComment
				blockDepth = 1
				openOffset = i
				i += 2
			case c == '\'':
				if stmtStart < 0 {
					stmtStart = i
				}
				hasContent = true
				m = modeSingleQuoted
				openOffset = i
				i++
			case c == '"':
				if stmtStart < 0 {
					stmtStart = i
				}
				hasContent = true
				m = modeQuotedIdent
				openOffset = i
				i++
			case c == '$':
				// A dollar only opens a quoted block when a syntactically
				// valid tag delimiter follows; otherwise it is an ordinary
				// character (e.g. a $1 parameter placeholder).
				if tag, ok := scanDollarTag(text, i); ok {
					if stmtStart < 0 {
						stmtStart = i
					}
					hasContent = true
					m = modeDollarQuoted
					dollarTag = tag
					openOffset = i
					i += len(tag)
				} else {
					if stmtStart < 0 {
						stmtStart = i
					}
					hasContent = true
					i++
				}
			case isSpace(c):
				i++
			default:
				if stmtStart < 0 {
					stmtStart = i
				}
				hasContent = true
				i++
			}

		case modeSingleQuoted:
			if c == '\'' {
				if i+1 < n && text[i+1] == '\'' {
					// Doubled quote is an escape, stay in the string
					i += 2
				} else {
					m = modeNormal
					i++
				}
			} else {
				i++
			}

		case modeQuotedIdent:
			if c == '"' {
				if i+1 < n && text[i+1] == '"' {
					i += 2
				} else {
					m = modeNormal
					i++
				}
			} else {
				i++
			}

		case modeLineComment:
			if c == '\n' {
				m = modeNormal
			}
			i++

		case modeBlockComment:
			switch {
			case c == '/' && i+1 < n && text[i+1] == '*':
				blockDepth++
				i += 2
			case c == '*' && i+1 < n && text[i+1] == '/':
				blockDepth--
				i += 2
				if blockDepth == 0 {
					m = modeNormal
				}
			default:
				i++
			}

		case modeDollarQuoted:
			// The closing delimiter must match the opening tag exactly,
			// case-sensitively.
			if c == '$' && strings.HasPrefix(text[i:], dollarTag) {
				m = modeNormal
				i += len(dollarTag)
				dollarTag = ""
			} else {
				i++
			}
		}
	}

	// Reaching end of input inside a line comment is fine; any other open
	// mode means the script is truncated or a delimiter never closed.
	if m != modeNormal && m != modeLineComment {
		return nil, &pgsetup.LexError{
			Index:  len(stmts),
			Offset: openOffset,
			Mode:   m.String(),
		}
	}

	if stmtStart >= 0 && hasContent {
		emit(n)
	}

	return stmts, nil
}

// scanDollarTag reports whether a dollar-quote delimiter starts at i and
// returns the full delimiter including both dollar signs. A valid tag is
// empty ("$$") or an identifier: a letter or underscore followed by
// letters, digits, or underscores.
func scanDollarTag(text string, i int) (string, bool) {
	j := i + 1
	if j < len(text) && text[j] == '$' {
		return "$$", true
	}
	for j < len(text) {
		c := text[j]
		if c == '$' {
			return text[i : j+1], true
		}
		if j == i+1 {
			if !isTagStart(c) {
				return "", false
			}
		} else if !isTagPart(c) {
			return "", false
		}
		j++
	}
	return "", false
}

func isTagStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isTagPart(c byte) bool {
	return isTagStart(c) || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
