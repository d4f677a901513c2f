package splitter

import (
	"errors"
	"strings"
	"testing"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

func statementTexts(stmts []pgsetup.Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.Text
	}
	return out
}

func TestSplit_Basic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Single statement with terminator",
			input:    "SELECT 1;",
			expected: []string{"SELECT 1"},
		},
		{
			name:     "Single statement without terminator",
			input:    "SELECT 1",
			expected: []string{"SELECT 1"},
		},
		{
			name:     "Two statements",
			input:    "CREATE TABLE t (id int);\nINSERT INTO t VALUES (1);",
			expected: []string{"CREATE TABLE t (id int)", "INSERT INTO t VALUES (1)"},
		},
		{
			name:     "Empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "Whitespace only",
			input:    "  \n\t  \n",
			expected: nil,
		},
		{
			name:     "Empty statements dropped",
			input:    ";;;SELECT 1;;",
			expected: []string{"SELECT 1"},
		},
		{
			name:     "Trailing statement without semicolon",
			input:    "SELECT 1;\nSELECT 2",
			expected: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:     "Surrounding whitespace trimmed",
			input:    "   SELECT 1   ;\n\n  SELECT 2  ;",
			expected: []string{"SELECT 1", "SELECT 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := Split(tt.input)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			got := statementTexts(stmts)
			if len(got) != len(tt.expected) {
				t.Fatalf("Split() = %q, expected %q", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("statement %d = %q, expected %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSplit_Strings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Semicolon inside string",
			input:    "INSERT INTO t VALUES ('a;b');",
			expected: []string{"INSERT INTO t VALUES ('a;b')"},
		},
		{
			name:     "Doubled quote escape",
			input:    "SELECT 'it''s; fine';",
			expected: []string{"SELECT 'it''s; fine'"},
		},
		{
			name:     "Semicolon inside quoted identifier",
			input:    `SELECT "weird;name" FROM t;`,
			expected: []string{`SELECT "weird;name" FROM t`},
		},
		{
			name:     "Doubled double quote escape",
			input:    `SELECT "a""b;c";`,
			expected: []string{`SELECT "a""b;c"`},
		},
		{
			name:     "Comment markers inside string",
			input:    "SELECT '-- not a comment /* neither */';",
			expected: []string{"SELECT '-- not a comment /* neither */'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := Split(tt.input)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			got := statementTexts(stmts)
			if len(got) != len(tt.expected) {
				t.Fatalf("Split() = %q, expected %q", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("statement %d = %q, expected %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSplit_Comments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Comment-only input produces no statements",
			input:    "-- just a comment\n/* and a block */",
			expected: nil,
		},
		{
			name:     "Semicolon in line comment ignored",
			input:    "SELECT 1 -- trailing; semicolon\n;",
			expected: []string{"SELECT 1 -- trailing; semicolon"},
		},
		{
			name:     "Semicolon in block comment ignored",
			input:    "SELECT /* a;b */ 1;",
			expected: []string{"SELECT /* a;b */ 1"},
		},
		{
			name:     "Nested block comments",
			input:    "SELECT /* outer /* inner; */ still outer; */ 1;",
			expected: []string{"SELECT /* outer /* inner; */ still outer; */ 1"},
		},
		{
			name:     "Line comment between statements",
			input:    "SELECT 1;\n-- separator\nSELECT 2;",
			expected: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:     "Unterminated line comment at EOF is fine",
			input:    "SELECT 1;\n-- trailing comment",
			expected: []string{"SELECT 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := Split(tt.input)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			got := statementTexts(stmts)
			if len(got) != len(tt.expected) {
				t.Fatalf("Split() = %q, expected %q", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("statement %d = %q, expected %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSplit_DollarQuoting(t *testing.T) {
	funcBody := `CREATE FUNCTION f() RETURNS void AS $$
BEGIN
    UPDATE t SET x = 1;
    DELETE FROM u; -- internal comment
END;
$$ LANGUAGE plpgsql`

	t.Run("Function body is one statement", func(t *testing.T) {
		stmts, err := Split(funcBody + ";\nSELECT 1;")
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if len(stmts) != 2 {
			t.Fatalf("expected 2 statements, got %d: %q", len(stmts), statementTexts(stmts))
		}
		if stmts[0].Text != funcBody {
			t.Errorf("function body mangled:\n%q", stmts[0].Text)
		}
		if stmts[1].Text != "SELECT 1" {
			t.Errorf("second statement = %q", stmts[1].Text)
		}
	})

	t.Run("Tagged delimiters", func(t *testing.T) {
		input := "SELECT $body$ text with ; and $$ inside $body$;"
		stmts, err := Split(input)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if len(stmts) != 1 {
			t.Fatalf("expected 1 statement, got %d", len(stmts))
		}
	})

	t.Run("Tag close is case sensitive", func(t *testing.T) {
		_, err := Split("SELECT $Tag$ body $tag$ more $Tag$;")
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
	})

	t.Run("Parameter placeholder is not a tag", func(t *testing.T) {
		stmts, err := Split("PREPARE p AS SELECT $1; EXECUTE p(1);")
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if len(stmts) != 2 {
			t.Fatalf("expected 2 statements, got %d: %q", len(stmts), statementTexts(stmts))
		}
	})

	t.Run("Nested different tags", func(t *testing.T) {
		input := "SELECT $outer$ has $inner$ not special $outer$;"
		stmts, err := Split(input)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if len(stmts) != 1 {
			t.Fatalf("expected 1 statement, got %d", len(stmts))
		}
	})
}

func TestSplit_LexErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantMode   string
		wantIndex  int
		wantOffset int
	}{
		{
			name:       "Unterminated string",
			input:      "SELECT 'oops",
			wantMode:   "string",
			wantIndex:  0,
			wantOffset: 7,
		},
		{
			name:       "Unterminated quoted identifier",
			input:      `SELECT "oops`,
			wantMode:   "quoted identifier",
			wantIndex:  0,
			wantOffset: 7,
		},
		{
			name:       "Unterminated block comment",
			input:      "SELECT 1; /* open",
			wantMode:   "block comment",
			wantIndex:  1,
			wantOffset: 10,
		},
		{
			name:       "Unterminated nested block comment",
			input:      "/* outer /* inner */ still open",
			wantMode:   "block comment",
			wantIndex:  0,
			wantOffset: 0,
		},
		{
			name:       "Unterminated dollar quote",
			input:      "SELECT 1;\nSELECT $$ never closed",
			wantMode:   "dollar-quoted block",
			wantIndex:  1,
			wantOffset: 17,
		},
		{
			name:       "Mismatched dollar tag",
			input:      "SELECT $a$ body $b$;",
			wantMode:   "dollar-quoted block",
			wantIndex:  0,
			wantOffset: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := Split(tt.input)
			if err == nil {
				t.Fatalf("expected error, got statements %q", statementTexts(stmts))
			}
			var lexErr *pgsetup.LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *LexError, got %T: %v", err, err)
			}
			if stmts != nil {
				t.Errorf("statements must be nil on lex error, got %d", len(stmts))
			}
			if lexErr.Mode != tt.wantMode {
				t.Errorf("Mode = %q, expected %q", lexErr.Mode, tt.wantMode)
			}
			if lexErr.Index != tt.wantIndex {
				t.Errorf("Index = %d, expected %d", lexErr.Index, tt.wantIndex)
			}
			if lexErr.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, expected %d", lexErr.Offset, tt.wantOffset)
			}
		})
	}
}

func TestSplit_IndexesAndOffsets(t *testing.T) {
	input := "SELECT 1;\n  SELECT 2;"
	stmts, err := Split(input)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	for i, s := range stmts {
		if s.Index != i {
			t.Errorf("statement %d has Index %d", i, s.Index)
		}
	}
	if stmts[0].Offset != 0 {
		t.Errorf("first Offset = %d", stmts[0].Offset)
	}
	if stmts[1].Offset != strings.Index(input, "SELECT 2") {
		t.Errorf("second Offset = %d, expected %d", stmts[1].Offset, strings.Index(input, "SELECT 2"))
	}
}

func TestSplit_Determinism(t *testing.T) {
	input := "SELECT 'a;b'; /* c */ SELECT $$d;$$; -- e\nSELECT 3;"
	first, err := Split(input)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	for run := 0; run < 10; run++ {
		again, err := Split(input)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: %d statements, expected %d", run, len(again), len(first))
		}
		for i := range again {
			if again[i] != first[i] {
				t.Errorf("run %d: statement %d differs", run, i)
			}
		}
	}
}
