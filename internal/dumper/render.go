package dumper

import (
	"fmt"
	"math/big"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Literal renders a scanned cell value as a SQL literal. pgx hands back
// Go-native types for the common OIDs and pgtype values or raw strings for
// the rest; everything unknown falls through to a quoted string, which
// PostgreSQL casts back on insert.
func Literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []byte:
		return fmt.Sprintf(`'\x%x'`, v)
	case string:
		return quoteText(v)
	case time.Time:
		return quoteText(v.Format("2006-01-02 15:04:05.999999-07"))
	case pgtype.Numeric:
		return numericLiteral(v)
	case netip.Prefix:
		return quoteText(v.String())
	case [16]byte: // uuid
		return quoteText(fmt.Sprintf("%x-%x-%x-%x-%x", v[0:4], v[4:6], v[6:8], v[8:10], v[10:16]))
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = Literal(item)
		}
		return "ARRAY[" + strings.Join(items, ", ") + "]"
	default:
		return quoteText(fmt.Sprint(v))
	}
}

func numericLiteral(n pgtype.Numeric) string {
	if !n.Valid {
		return "NULL"
	}
	if n.NaN {
		return "'NaN'"
	}
	if n.InfinityModifier != pgtype.Finite {
		if n.InfinityModifier == pgtype.Infinity {
			return "'Infinity'"
		}
		return "'-Infinity'"
	}
	f := new(big.Float).SetInt(n.Int)
	if n.Exp != 0 {
		exp := new(big.Float).SetFloat64(1)
		ten := big.NewFloat(10)
		steps := n.Exp
		if steps < 0 {
			steps = -steps
		}
		for i := int32(0); i < steps; i++ {
			exp.Mul(exp, ten)
		}
		if n.Exp > 0 {
			f.Mul(f, exp)
		} else {
			f.Quo(f, exp)
		}
	}
	return f.Text('f', -1)
}

// quoteText single-quotes a string with '' escaping.
func quoteText(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// insertStatement renders one INSERT for a row of already-scanned values.
func insertStatement(schema, table string, columns []string, values []any) string {
	literals := make([]string, len(values))
	for i, v := range values {
		literals[i] = Literal(v)
	}
	return fmt.Sprintf("INSERT INTO %q.%q (%s) VALUES (%s);",
		schema, table, quoteIdents(columns), strings.Join(literals, ", "))
}

// sectionHeader renders the banner comment that introduces a dump section.
func sectionHeader(title string) string {
	return "-- ===========================================\n" +
		"-- " + title + "\n" +
		"-- ===========================================\n"
}
