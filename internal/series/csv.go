package series

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ExportCSV writes the series to path as CSV with a "step,value" header and
// one row per point, in the order given. Callers wanting step order must pass
// a series retrieved pre-sorted. Any existing file at path is overwritten.
func ExportCSV(s Series, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range s {
		row := []string{
			strconv.FormatInt(p.Step, 10),
			strconv.FormatFloat(p.Value, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for step %d: %w", p.Step, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
