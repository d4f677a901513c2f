package splitter

import (
	"fmt"
	"os"

	"github.com/hmkang/pgsetup/internal/encoding"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// LoadScript reads one SQL file, decides its encoding, and splits it into
// statements. A split failure carries the file's LexError unchanged so the
// caller can abort the whole batch before anything executes.
func LoadScript(path string, resolver *encoding.Resolver) (pgsetup.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pgsetup.Script{}, fmt.Errorf("read %s: %w", path, err)
	}

	text, enc, err := resolver.Resolve(data)
	if err != nil {
		return pgsetup.Script{}, fmt.Errorf("decode %s: %w", path, err)
	}

	stmts, err := Split(text)
	if err != nil {
		return pgsetup.Script{}, fmt.Errorf("%s: %w", path, err)
	}

	return pgsetup.Script{
		File:       path,
		Encoding:   string(enc),
		Statements: stmts,
	}, nil
}

// LoadScripts loads a batch of files in order. The first unreadable or
// unsplittable file fails the whole load.
func LoadScripts(paths []string, resolver *encoding.Resolver) ([]pgsetup.Script, error) {
	scripts := make([]pgsetup.Script, 0, len(paths))
	for _, path := range paths {
		script, err := LoadScript(path, resolver)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}
