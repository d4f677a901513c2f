package encoding

import (
	"errors"
	"testing"

	"golang.org/x/text/encoding/korean"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// euckrBytes encodes a UTF-8 string to EUC-KR for test fixtures.
func euckrBytes(t *testing.T, s string) []byte {
	t.Helper()
	out, err := korean.EUCKR.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return out
}

func TestLookup(t *testing.T) {
	tests := []struct {
		input    string
		expected Name
		wantErr  bool
	}{
		{input: "utf-8", expected: UTF8},
		{input: "UTF8", expected: UTF8},
		{input: "euc-kr", expected: EUCKR},
		{input: "EUC_KR", expected: EUCKR},
		{input: "cp949", expected: EUCKR},
		{input: "shift-jis", expected: ShiftJIS},
		{input: "sjis", expected: ShiftJIS},
		{input: "cp932", expected: ShiftJIS},
		{input: "gbk", expected: GBK},
		{input: "cp936", expected: GBK},
		{input: "latin-1", expected: Latin1},
		{input: "latin1", expected: Latin1},
		{input: "ISO-8859-1", expected: Latin1},
		{input: "  euc-kr  ", expected: EUCKR},
		{input: "klingon", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Lookup(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Lookup(%q) = %q, expected error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Lookup(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolver_Resolve_UTF8(t *testing.T) {
	r := NewResolver()

	t.Run("Plain ASCII resolves as UTF-8", func(t *testing.T) {
		text, name, err := r.Resolve([]byte("SELECT 1;"))
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if name != UTF8 {
			t.Errorf("encoding = %q, expected utf-8", name)
		}
		if text != "SELECT 1;" {
			t.Errorf("text = %q", text)
		}
	})

	t.Run("Valid UTF-8 Korean resolves as UTF-8", func(t *testing.T) {
		input := "INSERT INTO t VALUES ('한글');"
		text, name, err := r.Resolve([]byte(input))
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if name != UTF8 {
			t.Errorf("encoding = %q, expected utf-8", name)
		}
		if text != input {
			t.Errorf("text = %q", text)
		}
	})

	t.Run("BOM is stripped", func(t *testing.T) {
		input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("SELECT 1;")...)
		text, name, err := r.Resolve(input)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if name != UTF8 {
			t.Errorf("encoding = %q, expected utf-8", name)
		}
		if text != "SELECT 1;" {
			t.Errorf("text = %q, BOM not stripped", text)
		}
	})
}

func TestResolver_Resolve_EUCKR(t *testing.T) {
	r := NewResolver()
	want := "INSERT INTO t VALUES ('한글 데이터');"
	raw := euckrBytes(t, want)

	text, name, err := r.Resolve(raw)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != EUCKR {
		t.Fatalf("encoding = %q, expected euc-kr", name)
	}
	if text != want {
		t.Errorf("text = %q, expected %q", text, want)
	}
}

func TestResolver_Resolve_Latin1Fallback(t *testing.T) {
	r := NewResolver()

	// 0xFF 0xFF is invalid UTF-8 and invalid EUC-KR, but Latin-1 maps
	// every byte to a code point.
	text, name, err := r.Resolve([]byte{'S', 0xFF, 0xFF, 'T'})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != Latin1 {
		t.Fatalf("encoding = %q, expected latin-1", name)
	}
	if text != "SÿÿT" {
		t.Errorf("text = %q", text)
	}
}

func TestResolver_Resolve_Exhausted(t *testing.T) {
	// Without the total latin-1 terminal, invalid bytes exhaust the chain.
	r := NewResolver(UTF8, EUCKR)
	_, _, err := r.Resolve([]byte{0xFF, 0xFF})
	if !errors.Is(err, pgsetup.ErrEncodingExhausted) {
		t.Fatalf("expected ErrEncodingExhausted, got %v", err)
	}
}

func TestResolver_Resolve_Deterministic(t *testing.T) {
	r := NewResolver()
	raw := euckrBytes(t, "UPDATE t SET name = '부산';")

	_, first, err := r.Resolve(raw)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		_, again, err := r.Resolve(raw)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if again != first {
			t.Fatalf("resolution not deterministic: %q then %q", first, again)
		}
	}
}

func TestResolver_CustomOrder(t *testing.T) {
	// A forced single-candidate list decodes only under that table.
	r := NewResolver(EUCKR)
	raw := euckrBytes(t, "한글")

	text, name, err := r.Resolve(raw)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != EUCKR {
		t.Errorf("encoding = %q", name)
	}
	if text != "한글" {
		t.Errorf("text = %q", text)
	}
}
