package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"storepulse/internal/domain"
	"storepulse/internal/shared"
)

// Assembler renders enriched reviews and summary tables into styled
// multi-sheet workbooks. Styling is cosmetic only: cell values are
// written before styles and never rewritten by them.
type Assembler struct {
	pal shared.PaletteConfig
}

func NewAssembler(pal shared.PaletteConfig) *Assembler {
	def := shared.DefaultPalette()
	// Tolerate a partial palette; a missing color never fails the run.
	if pal.Primary == "" {
		pal.Primary = def.Primary
	}
	if pal.Secondary == "" {
		pal.Secondary = def.Secondary
	}
	if pal.LightGray == "" {
		pal.LightGray = def.LightGray
	}
	if pal.MediumGray == "" {
		pal.MediumGray = def.MediumGray
	}
	if pal.DarkGray == "" {
		pal.DarkGray = def.DarkGray
	}
	if pal.White == "" {
		pal.White = def.White
	}
	if pal.TextDark == "" {
		pal.TextDark = def.TextDark
	}
	return &Assembler{pal: pal}
}

var detailHeaders = []string{
	"Reviewer / اسم العميل", "Review / التقييم", "Stars / النجوم", "Date / التاريخ",
	"Store / الفرع", "Staff Sentiment / تقييم البائع", "Staff Score",
	"Store Sentiment / تقييم الفرع", "Store Score", "Staff Name / اسم البائع",
}

var summaryHeaders = []string{
	"Positive / مدح", "Negative / ذم", "Neutral / محايد", "No Context / بدون سياق",
	"Reviews / عدد التقييمات", "Avg Stars / متوسط النجوم",
}

// WriteReport writes the four-sheet styled report. Sheet order and
// per-sheet columns are a contract; titles and colors are not.
func (a *Assembler) WriteReport(path string, reviews []domain.Review, staff, store, cross []domain.SummaryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "All Reviews"); err != nil {
		return err
	}
	for _, name := range []string{"Staff Performance", "Store Performance", "Staff x Store"} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	detail := make([][]any, 0, len(reviews))
	for i := range reviews {
		rv := &reviews[i]
		detail = append(detail, []any{
			rv.Reviewer, rv.Text, starsCell(rv.Stars), rv.DateText, rv.StoreCode,
			string(rv.StaffResult.Label), scoreCell(rv.StaffResult),
			string(rv.StoreResult.Label), scoreCell(rv.StoreResult),
			rv.Staff.Name,
		})
	}
	if err := a.writeSheet(f, "All Reviews", "📝 All Reviews", detailHeaders, detail, a.pal.Secondary, a.pal.Primary); err != nil {
		return err
	}

	if err := a.writeSheet(f, "Staff Performance", "شيت المدح والذم",
		append([]string{"Staff / البائع"}, summaryHeaders...),
		summaryData(staff, func(r domain.SummaryRow) []any { return []any{r.Staff} }),
		a.pal.Primary, a.pal.Secondary); err != nil {
		return err
	}
	if err := a.writeSheet(f, "Store Performance", "أداء الفروع",
		append([]string{"Store / الفرع"}, summaryHeaders...),
		summaryData(store, func(r domain.SummaryRow) []any { return []any{r.Store} }),
		a.pal.Primary, a.pal.Secondary); err != nil {
		return err
	}
	if err := a.writeSheet(f, "Staff x Store", "البائع حسب الفرع",
		append([]string{"Staff / البائع", "Store / الفرع"}, summaryHeaders...),
		summaryData(cross, func(r domain.SummaryRow) []any { return []any{r.Staff, r.Store} }),
		a.pal.Primary, a.pal.Secondary); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

// WriteRawReviews writes the scraper's own export: one flat sheet in
// listing order, pre-analysis.
func (a *Assembler) WriteRawReviews(path string, reviews []domain.Review) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Reviews"); err != nil {
		return err
	}
	headers := []string{"review_date", "stars", "store_code", "reviewer_name", "review_text", "English Review", "Arabic Review"}
	rows := make([][]any, 0, len(reviews))
	for i := range reviews {
		rv := &reviews[i]
		rows = append(rows, []any{
			rv.DateText, starsCell(rv.Stars), rv.StoreCode, rv.Reviewer,
			rv.Text, rv.TextEnglish, rv.TextArabic,
		})
	}
	if err := a.writeSheet(f, "Reviews", "Google Reviews", headers, rows, a.pal.Secondary, a.pal.Primary); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func summaryData(rows []domain.SummaryRow, lead func(domain.SummaryRow) []any) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		cells := append(lead(r), r.Positive, r.Negative, r.Neutral, r.NoContext, r.Reviews, avgCell(r))
		out = append(out, cells)
	}
	return out
}

func starsCell(s *int) any {
	if s == nil {
		return ""
	}
	return *s
}

func scoreCell(cr domain.ContextResult) any {
	if cr.Label == domain.LabelNoContext {
		return ""
	}
	return cr.Score
}

func avgCell(r domain.SummaryRow) any {
	if r.Rated == 0 {
		return ""
	}
	return r.AvgStars
}

// writeSheet lays a sheet out the same way for every table: merged title
// row, colored header row, alternating data rows, frozen header pane,
// content-fitted column widths.
func (a *Assembler) writeSheet(f *excelize.File, sheet, title string, headers []string, rows [][]any, titleColor, headerColor string) error {
	// Values first.
	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+3)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	// Title row.
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", last); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Segoe UI", Size: 16, Bold: true, Color: a.pal.White},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{titleColor}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, titleStyle); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheet, 1, 35); err != nil {
		return err
	}

	// Header row.
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Segoe UI", Size: 11, Bold: true, Color: a.pal.White},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    []excelize.Border{{Type: "bottom", Color: a.pal.DarkGray, Style: 2}},
	})
	if err != nil {
		return err
	}
	hLast, err := excelize.CoordinatesToCellName(len(headers), 2)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A2", hLast, headerStyle); err != nil {
		return err
	}

	// Alternating data rows.
	evenStyle, err := a.rowStyle(f, a.pal.White)
	if err != nil {
		return err
	}
	oddStyle, err := a.rowStyle(f, a.pal.LightGray)
	if err != nil {
		return err
	}
	for r := range rows {
		first, err := excelize.CoordinatesToCellName(1, r+3)
		if err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(len(headers), r+3)
		if err != nil {
			return err
		}
		style := evenStyle
		if r%2 == 1 {
			style = oddStyle
		}
		if err := f.SetCellStyle(sheet, first, end, style); err != nil {
			return err
		}
	}

	// Column widths fit the longest value, capped at 50.
	for c := range headers {
		width := len(headers[c])
		for _, row := range rows {
			if c < len(row) {
				if l := len(fmt.Sprint(row[c])); l > width {
					width = l
				}
			}
		}
		if width+3 < 50 {
			width += 3
		} else {
			width = 50
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: 2, TopLeftCell: "A3", ActivePane: "bottomLeft",
	})
}

func (a *Assembler) rowStyle(f *excelize.File, fill string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Segoe UI", Size: 10, Color: a.pal.TextDark},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: a.pal.MediumGray, Style: 1},
			{Type: "right", Color: a.pal.MediumGray, Style: 1},
			{Type: "bottom", Color: a.pal.MediumGray, Style: 1},
		},
	})
}
