// Package summary computes the dashboard blocks of the Summary sheet:
// per-chapter fulfillment statistics and the grand total, expressed as
// spreadsheet formulas over the chapter tables.
package summary

// Levels is the number of ASVS compliance levels, and therefore the
// number of data rows in every statistics table.
const Levels = 3

// blockStride is the number of sheet rows one dashboard block occupies:
// a heading row, a header row, one data row per level, and a blank
// separator row.
const blockStride = 5

// Layout fixes the Summary sheet geometry for a given chapter count.
// Every block row derives from it and nowhere else, so the chapter
// blocks and the grand total's cell references cannot disagree about
// where a row landed. All rows are 1-based sheet rows.
type Layout struct {
	chapters int
}

// NewLayout returns the layout for the given number of chapter tables.
func NewLayout(chapters int) Layout {
	return Layout{chapters: chapters}
}

// Chapters returns the chapter count the layout was built for.
func (l Layout) Chapters() int {
	return l.chapters
}

// HeadingRow returns the row of chapter i's merged heading.
func (l Layout) HeadingRow(i int) int {
	return i*blockStride + 1
}

// TableFirstRow returns the row of chapter i's statistics header.
func (l Layout) TableFirstRow(i int) int {
	return l.HeadingRow(i) + 1
}

// TableLastRow returns the last data row of chapter i's statistics.
func (l Layout) TableLastRow(i int) int {
	return l.TableFirstRow(i) + Levels
}

// LevelRow returns the data row holding chapter i's statistics for the
// given level (1 to Levels).
func (l Layout) LevelRow(i, level int) int {
	return l.TableFirstRow(i) + level
}

// TotalHeadingRow returns the row of the grand-total heading, directly
// after the last chapter block.
func (l Layout) TotalHeadingRow() int {
	return l.HeadingRow(l.chapters)
}

// TotalFirstRow returns the row of the grand-total statistics header.
func (l Layout) TotalFirstRow() int {
	return l.TotalHeadingRow() + 1
}

// TotalLastRow returns the last data row of the grand-total statistics.
func (l Layout) TotalLastRow() int {
	return l.TotalFirstRow() + Levels
}

// TotalLevelRow returns the grand-total data row for the given level.
func (l Layout) TotalLevelRow(level int) int {
	return l.TotalFirstRow() + level
}
