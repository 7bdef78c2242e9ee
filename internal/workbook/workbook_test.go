package workbook

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/m4uz/asvs-xgen/internal/catalog"
	"github.com/m4uz/asvs-xgen/internal/checklist"
	"github.com/m4uz/asvs-xgen/internal/summary"
)

// demoCatalog has two chapters: V1 with one requirement at level 1 only
// and one at all levels, V2 with one requirement at level 2 only.
func demoCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Version: 4,
		Chapters: []*catalog.Chapter{
			{
				ID:   "V1",
				Name: "Architecture",
				Requirements: []catalog.Requirement{
					{ID: "1.1.1", Section: "Secure SDLC", Description: "Verify the SDLC", Level1: "✓"},
					{ID: "1.1.2", Section: "Secure SDLC", Description: "Verify threat modeling", Level1: "✓", Level2: "✓", Level3: "✓"},
				},
			},
			{
				ID:   "V2",
				Name: "Authentication",
				Requirements: []catalog.Requirement{
					{ID: "2.1.1", Section: "Passwords", Description: "Verify password length", Level2: "✓"},
				},
			},
		},
	}
}

// buildWorkbook runs the whole pipeline from a catalog to a built file.
func buildWorkbook(t *testing.T, cat *catalog.Catalog) *excelize.File {
	t.Helper()
	tables, err := checklist.Build(cat)
	if err != nil {
		t.Fatalf("checklist.Build: %v", err)
	}
	layout := summary.NewLayout(len(tables))
	blocks, total := summary.Build(tables, layout)
	f, err := Build(tables, blocks, total, layout)
	if err != nil {
		t.Fatalf("workbook.Build: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// saveAndReopen round-trips the file through disk, so assertions run
// against what a spreadsheet application would actually load.
func saveAndReopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checklist.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	reopened, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	t.Cleanup(func() { reopened.Close() })
	return reopened
}

// cellAt reads a cell from a GetRows row, treating trimmed trailing
// cells as empty.
func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func TestBuild_SummarySheetIsFirst(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, demoCatalog()))

	got := f.GetSheetList()
	want := []string{"Summary", "V1 Architecture", "V2 Authentication"}
	if len(got) != len(want) {
		t.Fatalf("sheet list = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuild_ChapterSheetRows(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, demoCatalog()))

	rows, err := f.GetRows("V1 Architecture")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want header + 2 requirements", len(rows))
	}

	for i, col := range checklist.Columns() {
		if got := cellAt(rows[0], i); got != col.Header {
			t.Errorf("header[%d] = %q, want %q", i, got, col.Header)
		}
	}

	for r, req := range demoCatalog().Chapters[0].Requirements {
		for c, want := range req.Row() {
			if got := cellAt(rows[r+1], c); got != want {
				t.Errorf("row %d col %d = %q, want %q", r+1, c, got, want)
			}
		}
	}
}

func TestBuild_ChapterTableSpansAllRows(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, demoCatalog()))

	tables, err := f.GetTables("V1 Architecture")
	if err != nil {
		t.Fatalf("GetTables: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("table count = %d, want 1", len(tables))
	}
	if tables[0].Name != "table_v1" {
		t.Errorf("table name = %q, want %q", tables[0].Name, "table_v1")
	}
	if tables[0].Range != "A1:H3" {
		t.Errorf("table range = %q, want %q", tables[0].Range, "A1:H3")
	}
}

func TestBuild_FulfilledDropdown(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, demoCatalog()))

	dvs, err := f.GetDataValidations("V2 Authentication")
	if err != nil {
		t.Fatalf("GetDataValidations: %v", err)
	}
	if len(dvs) != 1 {
		t.Fatalf("validation count = %d, want 1", len(dvs))
	}
	dv := dvs[0]
	if dv.Sqref != "G2:G2" {
		t.Errorf("Sqref = %q, want %q", dv.Sqref, "G2:G2")
	}
	for _, answer := range checklist.FulfilledValues {
		if !strings.Contains(dv.Formula1, answer) {
			t.Errorf("dropdown %q missing answer %q", dv.Formula1, answer)
		}
	}
	if dv.ErrorTitle == nil || *dv.ErrorTitle != checklist.ValidationErrorTitle {
		t.Errorf("ErrorTitle = %v, want %q", dv.ErrorTitle, checklist.ValidationErrorTitle)
	}
}

func TestBuild_FulfilledConditionalColors(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, demoCatalog()))

	formats, err := f.GetConditionalFormats("V1 Architecture")
	if err != nil {
		t.Fatalf("GetConditionalFormats: %v", err)
	}
	opts, ok := formats["G2:G3"]
	if !ok {
		t.Fatalf("no conditional formats on G2:G3; got ranges %v", keys(formats))
	}
	if len(opts) != len(checklist.FulfilledValues) {
		t.Fatalf("rule count = %d, want %d", len(opts), len(checklist.FulfilledValues))
	}

	var values []string
	for _, opt := range opts {
		if opt.Format == nil {
			t.Error("conditional rule has no format")
		}
		values = append(values, opt.Value)
	}
	joined := strings.Join(values, " ")
	for _, answer := range checklist.FulfilledValues {
		if !strings.Contains(joined, answer) {
			t.Errorf("conditional rules %v missing answer %q", values, answer)
		}
	}
}

func keys(m map[string][]excelize.ConditionalFormatOptions) []string {
	var ks []string
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}

func TestBuild_SummaryFormulas(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, demoCatalog()))

	tests := []struct {
		cell    string
		formula string
	}{
		{"B3", `COUNTA(table_v1[Level 1])`},
		{"C3", `COUNTIFS(table_v1[Fulfilled], "Yes", table_v1[Level 1], "<>")`},
		{"G5", `COUNTIFS(table_v1[Fulfilled], "", table_v1[Level 3], "<>")`},
		{"B8", `COUNTA(table_v2[Level 1])`},
		{"F10", `COUNTIFS(table_v2[Fulfilled], "Not applicable", table_v2[Level 3], "<>")`},
		{"B13", "SUM(B3,B8)"},
		{"C13", "SUM(C3,C8)"},
		{"G15", "SUM(G5,G10)"},
	}
	for _, tt := range tests {
		got, err := f.GetCellFormula("Summary", tt.cell)
		if err != nil {
			t.Fatalf("GetCellFormula(%s): %v", tt.cell, err)
		}
		if got != tt.formula {
			t.Errorf("formula at %s = %q, want %q", tt.cell, got, tt.formula)
		}
	}
}

func TestBuild_SummaryHeadingsAndHeaders(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, demoCatalog()))

	headings := map[string]string{
		"A1":  "V1 Architecture",
		"A6":  "V2 Authentication",
		"A11": "Summary",
		"A2":  "Level",
		"B2":  "Total",
		"G2":  "No Answer",
		"A12": "Level",
		"A3":  "Level 1",
		"A13": "Level 1",
		"A15": "Level 3",
	}
	for cell, want := range headings {
		got, err := f.GetCellValue("Summary", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("value at %s = %q, want %q", cell, got, want)
		}
	}
}

func TestBuild_SummaryHeadingsMerged(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, demoCatalog()))

	merged, err := f.GetMergeCells("Summary")
	if err != nil {
		t.Fatalf("GetMergeCells: %v", err)
	}
	want := map[string]bool{"A1:F1": false, "A6:F6": false, "A11:F11": false}
	for _, mc := range merged {
		ref := mc.GetStartAxis() + ":" + mc.GetEndAxis()
		if _, ok := want[ref]; ok {
			want[ref] = true
		}
	}
	for ref, found := range want {
		if !found {
			t.Errorf("heading range %s is not merged", ref)
		}
	}
}

func TestBuild_EmptyCatalog(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, &catalog.Catalog{Version: 5}))

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Summary" {
		t.Fatalf("sheet list = %v, want just Summary", sheets)
	}

	if got, err := f.GetCellValue("Summary", "A1"); err != nil || got != "Summary" {
		t.Errorf("A1 = %q (err %v), want %q", got, err, "Summary")
	}
	for _, cell := range []string{"B3", "C4", "G5"} {
		formula, err := f.GetCellFormula("Summary", cell)
		if err != nil {
			t.Fatalf("GetCellFormula(%s): %v", cell, err)
		}
		if formula != "" {
			t.Errorf("formula at %s = %q, want a literal zero", cell, formula)
		}
		value, err := f.GetCellValue("Summary", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if value != "0" {
			t.Errorf("value at %s = %q, want %q", cell, value, "0")
		}
	}
}

func TestBuild_SheetZoom(t *testing.T) {
	f := saveAndReopen(t, buildWorkbook(t, demoCatalog()))

	for _, sheet := range f.GetSheetList() {
		view, err := f.GetSheetView(sheet, -1)
		if err != nil {
			t.Fatalf("GetSheetView(%s): %v", sheet, err)
		}
		if view.ZoomScale == nil || *view.ZoomScale != 150 {
			t.Errorf("zoom on %s = %v, want 150", sheet, view.ZoomScale)
		}
	}
}

const v5Export = `chapter_id,chapter_name,section_id,section_name,req_id,req_description,L
V1,Encoding and Sanitization,V1.1,Encoding Architecture,V1.1.1,Verify that input is canonicalized,1
V1,Encoding and Sanitization,V1.2,Injection Prevention,V1.2.1,Verify that output encoding is applied,2
V2,Validation and Business Logic,V2.1,Validation,V2.1.1,Verify that business logic flows are sequential,3
`

func TestBuild_RoundTripFromRawExport(t *testing.T) {
	cat, err := catalog.Parse(v5Export, 5)
	if err != nil {
		t.Fatalf("catalog.Parse: %v", err)
	}
	tables, err := checklist.Build(cat)
	if err != nil {
		t.Fatalf("checklist.Build: %v", err)
	}
	f := saveAndReopen(t, buildWorkbook(t, cat))

	for _, table := range tables {
		rows, err := f.GetRows(table.SheetName)
		if err != nil {
			t.Fatalf("GetRows(%s): %v", table.SheetName, err)
		}
		if len(rows) != len(table.Chapter.Requirements)+1 {
			t.Fatalf("sheet %q row count = %d, want %d", table.SheetName, len(rows), len(table.Chapter.Requirements)+1)
		}
		for r, req := range table.Chapter.Requirements {
			for c, want := range req.Row() {
				if got := cellAt(rows[r+1], c); got != want {
					t.Errorf("sheet %q row %d col %d = %q, want %q", table.SheetName, r+1, c, got, want)
				}
			}
		}
	}
}
