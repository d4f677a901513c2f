// Package encoding decides the text encoding of raw SQL script bytes by
// trial decode against an ordered candidate list.
//
// Field machines that produce the scripts are often Korean-Windows boxes,
// so the default chain is UTF-8, then EUC-KR (the CP949 family), then
// Latin-1. Latin-1 maps every byte value to a code point, making it a
// total terminal fallback: Resolve never fails on the default chain, and
// mis-detection is a silent correctness risk rather than an error. Callers
// should surface the chosen encoding so the operator can sanity-check it.
package encoding

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// Name identifies a candidate encoding.
type Name string

const (
	UTF8     Name = "utf-8"
	EUCKR    Name = "euc-kr"
	ShiftJIS Name = "shift-jis"
	GBK      Name = "gbk"
	Latin1   Name = "latin-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// legacyTables maps names to their x/text decoders. UTF-8 is validated
// directly and is not in this table.
var legacyTables = map[Name]encoding.Encoding{
	EUCKR:    korean.EUCKR,
	ShiftJIS: japanese.ShiftJIS,
	GBK:      simplifiedchinese.GBK,
	Latin1:   charmap.ISO8859_1,
}

// Lookup resolves a user-supplied encoding name to a Name.
// Accepted spellings are case-insensitive with or without the dash
// ("euckr", "EUC-KR", "latin1", ...).
func Lookup(name string) (Name, error) {
	normalized := Name(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-"))
	switch normalized {
	case UTF8, "utf8":
		return UTF8, nil
	case EUCKR, "euckr", "cp949":
		return EUCKR, nil
	case ShiftJIS, "shiftjis", "sjis", "cp932":
		return ShiftJIS, nil
	case GBK, "cp936":
		return GBK, nil
	case Latin1, "latin1", "iso-8859-1", "iso8859-1":
		return Latin1, nil
	default:
		return "", fmt.Errorf("unknown encoding %q (supported: utf-8, euc-kr, shift-jis, gbk, latin-1)", name)
	}
}

// DefaultCandidates is the resolve order used when no configuration
// overrides it: strict UTF-8, the Korean legacy codepage, then the total
// Latin-1 fallback.
func DefaultCandidates() []Name {
	return []Name{UTF8, EUCKR, Latin1}
}

// Resolver tries candidates in order and keeps the first strict decode.
// Resolution is stateless: the same bytes always resolve to the same
// encoding.
type Resolver struct {
	candidates []Name
}

// NewResolver creates a Resolver with the given candidate order.
// An empty list falls back to DefaultCandidates.
func NewResolver(candidates ...Name) *Resolver {
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}
	return &Resolver{candidates: candidates}
}

// Resolve decodes data under the first candidate that accepts it and
// returns the text together with the encoding used. The error return is
// only reachable with a custom candidate list that excludes latin-1;
// callers on the default chain may treat Resolve as total.
func (r *Resolver) Resolve(data []byte) (string, Name, error) {
	for _, name := range r.candidates {
		text, ok := decode(data, name)
		if ok {
			return text, name, nil
		}
	}
	return "", "", pgsetup.ErrEncodingExhausted
}

// decode attempts a strict decode of data under one candidate.
func decode(data []byte, name Name) (string, bool) {
	if name == UTF8 {
		trimmed := bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(trimmed) {
			return "", false
		}
		return string(trimmed), true
	}

	table, ok := legacyTables[name]
	if !ok {
		return "", false
	}
	decoded, err := table.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	text := string(decoded)
	// The x/text decoders substitute U+FFFD for byte sequences that are
	// invalid under the table instead of returning an error.
	if name != Latin1 && strings.ContainsRune(text, utf8.RuneError) {
		return "", false
	}
	return text, true
}
