package report

import (
	"sort"

	"storepulse/internal/domain"
)

// StaffRows groups attributed reviews by staff name and tallies their
// staff-context labels. Unattributed reviews contribute no row here;
// they remain visible on the detail sheet.
func StaffRows(rs []domain.Review) []domain.SummaryRow {
	byKey := map[string]*domain.SummaryRow{}
	for i := range rs {
		rv := &rs[i]
		if rv.Staff.Name == "" {
			continue
		}
		row := fetch(byKey, rv.Staff.Name, func(r *domain.SummaryRow) { r.Staff = rv.Staff.Name })
		tally(row, rv, rv.StaffResult.Label)
	}
	return sorted(byKey)
}

// StoreRows groups every review by store code (the empty code groups
// together) and tallies store-context labels.
func StoreRows(rs []domain.Review) []domain.SummaryRow {
	byKey := map[string]*domain.SummaryRow{}
	for i := range rs {
		rv := &rs[i]
		row := fetch(byKey, rv.StoreCode, func(r *domain.SummaryRow) { r.Store = rv.StoreCode })
		tally(row, rv, rv.StoreResult.Label)
	}
	return sorted(byKey)
}

// CrossRows produces one row per (staff, store) pair observed among
// attributed reviews, tallying staff-context labels: how each staff
// member is perceived at each branch.
func CrossRows(rs []domain.Review) []domain.SummaryRow {
	byKey := map[string]*domain.SummaryRow{}
	for i := range rs {
		rv := &rs[i]
		if rv.Staff.Name == "" {
			continue
		}
		key := rv.Staff.Name + "\x1f" + rv.StoreCode
		row := fetch(byKey, key, func(r *domain.SummaryRow) {
			r.Staff = rv.Staff.Name
			r.Store = rv.StoreCode
		})
		tally(row, rv, rv.StaffResult.Label)
	}
	return sorted(byKey)
}

func fetch(m map[string]*domain.SummaryRow, key string, init func(*domain.SummaryRow)) *domain.SummaryRow {
	if row, ok := m[key]; ok {
		return row
	}
	row := &domain.SummaryRow{}
	init(row)
	m[key] = row
	return row
}

func tally(row *domain.SummaryRow, rv *domain.Review, label domain.Label) {
	row.Reviews++
	switch label {
	case domain.LabelPositive:
		row.Positive++
	case domain.LabelNegative:
		row.Negative++
	case domain.LabelNeutral:
		row.Neutral++
	default:
		row.NoContext++
	}
	if rv.Stars != nil {
		// Running mean over known ratings only.
		row.AvgStars = (row.AvgStars*float64(row.Rated) + float64(*rv.Stars)) / float64(row.Rated+1)
		row.Rated++
	}
}

func sorted(m map[string]*domain.SummaryRow) []domain.SummaryRow {
	out := make([]domain.SummaryRow, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Staff != out[j].Staff {
			return out[i].Staff < out[j].Staff
		}
		return out[i].Store < out[j].Store
	})
	return out
}
