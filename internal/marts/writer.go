package marts

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Write persists every mart as <dataDir>/marts/<name>.csv, rewriting each
// file in full.
func Write(dataDir string, tables map[string]Table) error {
	dir := filepath.Join(dataDir, "marts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating marts dir: %w", err)
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writeTable(filepath.Join(dir, name+".csv"), tables[name]); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
