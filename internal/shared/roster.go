package shared

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadRoster reads the staff name reference list from a CSV file with an
// english_name column (extra columns are ignored). Order is preserved:
// attribution tie-breaks depend on it.
func LoadRoster(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("roster %s is empty", path)
	}

	col := 0
	for i, h := range recs[0] {
		if strings.EqualFold(strings.TrimSpace(h), "english_name") {
			col = i
			break
		}
	}

	names := make([]string, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		if col >= len(rec) {
			continue
		}
		if n := strings.TrimSpace(rec[col]); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("roster %s has no names", path)
	}
	return names, nil
}
