// Package workbook realizes the checklist as an Excel file: one
// worksheet per chapter table plus the Summary dashboard with its
// statistics blocks and fulfillment chart.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/m4uz/asvs-xgen/internal/checklist"
	"github.com/m4uz/asvs-xgen/internal/summary"
)

// SummarySheet is the dashboard worksheet. It is always the first
// sheet of the workbook.
const SummarySheet = "Summary"

// zoomScale is the default view zoom of every worksheet.
const zoomScale = 150.0

// chartAnchor is the top-left cell the fulfillment chart hangs from,
// to the right of the first statistics block.
const chartAnchor = "I2"

// tableStyle is the built-in Excel style applied to every table.
const tableStyle = "TableStyleLight9"

// chartTitle is the fulfillment chart's title.
const chartTitle = "Fulfillment Summary"

// chartSeriesDefs binds each fulfillment answer to its grand-total
// statistics column and bar color, in stacking order. The "Not
// applicable" and "No Answer" bars use neutral grays so the answered
// portion stands out.
var chartSeriesDefs = []struct {
	column string
	color  string
}{
	{"C", "ECF1DF"}, // Yes
	{"D", "FFC7CE"}, // No
	{"E", "FFEB9C"}, // Partially
	{"F", "D9D9D9"}, // Not applicable
	{"G", "F2F2F2"}, // No Answer
}

// builder carries the file under construction together with the style
// identifiers created once and reused across sheets.
type builder struct {
	f            *excelize.File
	colStyles    []int          // per checklist column, data-cell style
	headingStyle int            // merged block headings
	answerStyles map[string]int // conditional fill per fulfillment answer
}

// Build assembles the whole workbook in memory: the Summary sheet
// first, one worksheet per chapter table in order, then the dashboard
// blocks and chart. The caller owns the returned file and is expected
// to save and close it. Nothing touches the filesystem here, so a
// failed build leaves no partial output behind.
func Build(tables []checklist.Table, blocks []summary.Block, total summary.Block, layout summary.Layout) (*excelize.File, error) {
	f := excelize.NewFile()

	fail := func(err error) (*excelize.File, error) {
		f.Close() //nolint:errcheck
		return nil, err
	}

	b, err := newBuilder(f)
	if err != nil {
		return fail(err)
	}

	// The default sheet becomes the dashboard so it stays first.
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fail(fmt.Errorf("renaming dashboard sheet: %w", err))
	}

	for _, t := range tables {
		if err := b.addChapterSheet(t); err != nil {
			return fail(fmt.Errorf("worksheet %q: %w", t.SheetName, err))
		}
	}

	if err := b.addSummarySheet(blocks, total, layout); err != nil {
		return fail(fmt.Errorf("dashboard: %w", err))
	}

	return f, nil
}

// newBuilder creates the styles every sheet shares.
func newBuilder(f *excelize.File) (*builder, error) {
	b := &builder{f: f, answerStyles: make(map[string]int)}

	for _, col := range checklist.Columns() {
		style := &excelize.Style{
			Alignment: &excelize.Alignment{
				Horizontal: col.Align,
				Vertical:   col.VAlign,
				WrapText:   col.Wrap,
			},
		}
		if col.FillColor != "" {
			style.Fill = excelize.Fill{Type: "pattern", Color: []string{col.FillColor}, Pattern: 1}
		}
		id, err := f.NewStyle(style)
		if err != nil {
			return nil, fmt.Errorf("creating style for column %q: %w", col.Header, err)
		}
		b.colStyles = append(b.colStyles, id)
	}

	headingStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating heading style: %w", err)
	}
	b.headingStyle = headingStyle

	// Conditional formats reference differential styles, which live in
	// their own style table.
	for _, answer := range checklist.FulfilledValues {
		id, err := f.NewConditionalStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{checklist.FulfilledColor(answer)}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("creating fill for %q: %w", answer, err)
		}
		b.answerStyles[answer] = id
	}

	return b, nil
}

// addChapterSheet writes one chapter worksheet: the header row, one row
// per requirement, the named table spanning both, and the dropdown and
// status coloring on the Fulfilled column.
func (b *builder) addChapterSheet(t checklist.Table) error {
	if _, err := b.f.NewSheet(t.SheetName); err != nil {
		return err
	}
	if err := b.setZoom(t.SheetName); err != nil {
		return err
	}

	cols := checklist.Columns()
	for i, col := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := b.f.SetColWidth(t.SheetName, name, name, col.Width); err != nil {
			return err
		}
	}

	// The header cells must exist before AddTable: the table takes its
	// column names from them, and the Summary formulas address columns
	// by those names.
	headers := make([]any, len(cols))
	for i, col := range cols {
		headers[i] = col.Header
	}
	if err := b.f.SetSheetRow(t.SheetName, "A1", &headers); err != nil {
		return err
	}

	for i, req := range t.Chapter.Requirements {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := req.Row()
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := b.f.SetSheetRow(t.SheetName, cell, &values); err != nil {
			return err
		}
	}

	lastRow := len(t.Chapter.Requirements) + 1
	if lastRow > 1 {
		for i := range cols {
			first, err := excelize.CoordinatesToCellName(i+1, 2)
			if err != nil {
				return err
			}
			last, err := excelize.CoordinatesToCellName(i+1, lastRow)
			if err != nil {
				return err
			}
			if err := b.f.SetCellStyle(t.SheetName, first, last, b.colStyles[i]); err != nil {
				return err
			}
		}
	}

	end, err := excelize.CoordinatesToCellName(len(cols), lastRow)
	if err != nil {
		return err
	}
	if err := b.f.AddTable(t.SheetName, &excelize.Table{
		Range:     "A1:" + end,
		Name:      t.Name,
		StyleName: tableStyle,
	}); err != nil {
		return fmt.Errorf("adding table %q: %w", t.Name, err)
	}

	if lastRow > 1 {
		return b.addFulfilledRules(t.SheetName, lastRow)
	}
	return nil
}

// addFulfilledRules wires the dropdown and the answer coloring onto the
// Fulfilled column's data rows.
func (b *builder) addFulfilledRules(sheet string, lastRow int) error {
	ref := fmt.Sprintf("G2:G%d", lastRow)

	dv := excelize.NewDataValidation(true)
	dv.Sqref = ref
	if err := dv.SetDropList(checklist.FulfilledValues); err != nil {
		return fmt.Errorf("building dropdown: %w", err)
	}
	dv.SetError(excelize.DataValidationErrorStyleStop, checklist.ValidationErrorTitle, checklist.ValidationErrorMessage)
	if err := b.f.AddDataValidation(sheet, dv); err != nil {
		return fmt.Errorf("adding dropdown: %w", err)
	}

	// One independent equality rule per answer; the dropdown keeps the
	// answers mutually exclusive, so rule order never matters.
	opts := make([]excelize.ConditionalFormatOptions, 0, len(checklist.FulfilledValues))
	for _, answer := range checklist.FulfilledValues {
		styleID := b.answerStyles[answer]
		opts = append(opts, excelize.ConditionalFormatOptions{
			Type:     "cell",
			Criteria: "==",
			Value:    fmt.Sprintf("%q", answer),
			Format:   &styleID,
		})
	}
	if err := b.f.SetConditionalFormat(sheet, ref, opts); err != nil {
		return fmt.Errorf("adding answer coloring: %w", err)
	}
	return nil
}

// addSummarySheet writes the dashboard: one statistics block per
// chapter at its layout rows, the grand-total block after them, and
// the fulfillment chart.
func (b *builder) addSummarySheet(blocks []summary.Block, total summary.Block, layout summary.Layout) error {
	if err := b.setZoom(SummarySheet); err != nil {
		return err
	}

	for i, block := range blocks {
		err := b.addSummaryBlock(block, layout.HeadingRow(i), layout.TableFirstRow(i), layout.TableLastRow(i))
		if err != nil {
			return fmt.Errorf("block %q: %w", block.Heading, err)
		}
	}

	err := b.addSummaryBlock(total, layout.TotalHeadingRow(), layout.TotalFirstRow(), layout.TotalLastRow())
	if err != nil {
		return fmt.Errorf("grand-total block: %w", err)
	}

	return b.addChart(layout)
}

// addSummaryBlock writes one dashboard block: the bold heading merged
// across the statistics columns, the header row, and one row of values
// or formulas per level, wrapped in a table.
func (b *builder) addSummaryBlock(block summary.Block, headingRow, firstRow, lastRow int) error {
	heading := fmt.Sprintf("A%d", headingRow)
	headingEnd := fmt.Sprintf("F%d", headingRow)
	if err := b.f.SetCellValue(SummarySheet, heading, block.Heading); err != nil {
		return err
	}
	if err := b.f.SetCellStyle(SummarySheet, heading, heading, b.headingStyle); err != nil {
		return err
	}
	if err := b.f.MergeCell(SummarySheet, heading, headingEnd); err != nil {
		return err
	}

	headers := make([]any, len(summary.Headers))
	for i, h := range summary.Headers {
		headers[i] = h
	}
	if err := b.f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", firstRow), &headers); err != nil {
		return err
	}

	for r, row := range block.Rows {
		for c, cell := range row {
			ref, err := excelize.CoordinatesToCellName(c+1, firstRow+1+r)
			if err != nil {
				return err
			}
			if cell.Formula != "" {
				if err := b.f.SetCellFormula(SummarySheet, ref, cell.Formula); err != nil {
					return err
				}
				continue
			}
			if err := b.f.SetCellValue(SummarySheet, ref, cell.Value); err != nil {
				return err
			}
		}
	}

	return b.f.AddTable(SummarySheet, &excelize.Table{
		Range:     fmt.Sprintf("A%d:G%d", firstRow, lastRow),
		StyleName: tableStyle,
	})
}

// addChart embeds the percent-stacked bar chart over the grand-total
// block: one bar per level, one colored segment per answer state. The
// segments are labeled with their values and the percentage axis is
// hidden.
func (b *builder) addChart(layout summary.Layout) error {
	firstData := layout.TotalLevelRow(1)
	lastData := layout.TotalLastRow()

	series := make([]excelize.ChartSeries, 0, len(chartSeriesDefs))
	for _, def := range chartSeriesDefs {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$%d", SummarySheet, def.column, layout.TotalFirstRow()),
			Categories: fmt.Sprintf("%s!$A$%d:$A$%d", SummarySheet, firstData, lastData),
			Values:     fmt.Sprintf("%s!$%s$%d:$%s$%d", SummarySheet, def.column, firstData, def.column, lastData),
			Fill:       excelize.Fill{Type: "pattern", Color: []string{def.color}, Pattern: 1},
		})
	}

	return b.f.AddChart(SummarySheet, chartAnchor, &excelize.Chart{
		Type:     excelize.BarPercentStacked,
		Series:   series,
		Title:    []excelize.RichTextRun{{Text: chartTitle}},
		YAxis:    excelize.ChartAxis{None: true},
		PlotArea: excelize.ChartPlotArea{ShowVal: true},
	})
}

// setZoom applies the default view zoom to a worksheet.
func (b *builder) setZoom(sheet string) error {
	zoom := zoomScale
	return b.f.SetSheetView(sheet, -1, &excelize.ViewOptions{ZoomScale: &zoom})
}
