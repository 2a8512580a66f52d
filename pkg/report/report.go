// Package report serializes collected population rows to the output
// document.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/numistats/ngcpop/pkg/population"
)

// Write serializes rows as a top-level JSON array to path: UTF-8,
// 2-space indentation, non-ASCII characters and HTML-significant runes
// written literally. The previous file content is fully replaced.
//
// The document is written to a temp file in the target directory and
// renamed into place, so a failed run never leaves a torn report.
func Write(path string, rows []population.CoinResult) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()

	if err := encode(tmp, rows); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp report: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace report: %w", err)
	}

	return nil
}

// encode writes the document body. A nil row slice still encodes as an
// empty array, never as JSON null.
func encode(f *os.File, rows []population.CoinResult) error {
	if rows == nil {
		rows = []population.CoinResult{}
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
