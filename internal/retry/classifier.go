package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Transient reports whether an error is temporary and worth retrying.
// Covers the PostgreSQL error classes for connection exceptions (08),
// insufficient resources (53), and operator intervention (57), plus
// serialization/deadlock rollbacks and network-level failures.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientPgCode(pgErr.Code)
	}

	if networkError(err) {
		return true
	}

	// Driver errors that never reach a PgError still describe transient
	// transport conditions in their messages.
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"connection failure",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"broken pipe",
		"too many connections",
		"server closed the connection",
		"unexpected eof",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func transientPgCode(code string) bool {
	if strings.HasPrefix(code, "08") || // connection exception
		strings.HasPrefix(code, "53") || // insufficient resources
		strings.HasPrefix(code, "57") { // operator intervention
		return true
	}
	switch code {
	case "40001", "40P01": // serialization failure, deadlock detected
		return true
	case "55P03": // lock not available
		return true
	}
	return false
}

func networkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}
		return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ENETUNREACH) ||
			errors.Is(opErr.Err, syscall.EHOSTUNREACH)
	}
	return false
}
