package summary

import (
	"fmt"
	"strings"

	"github.com/m4uz/asvs-xgen/internal/checklist"
)

// Headers is the column header row shared by every statistics table on
// the Summary sheet: the level label, the total, one column per
// fulfillment answer, and the blank "No Answer" state.
var Headers = []string{"Level", "Total", "Yes", "No", "Partially", "Not applicable", "No Answer"}

// statColumns are the sheet columns holding the statistics, in Headers
// order after the level label.
var statColumns = []string{"B", "C", "D", "E", "F", "G"}

// TotalHeading is the heading of the grand-total block.
const TotalHeading = "Summary"

// Cell is one Summary sheet cell: a formula (stored without the leading
// "=") when Formula is non-empty, otherwise the literal Value.
type Cell struct {
	Value   any
	Formula string
}

// Block is one dashboard block: a heading followed by one row of cells
// per level, aligned with the Headers columns.
type Block struct {
	Heading string
	Rows    [][]Cell
}

// Build returns the per-chapter statistics blocks, in table order, and
// the grand-total block. The grand total references the chapter rows
// through the same layout the caller will place the blocks with, so the
// references hold for any chapter count.
func Build(tables []checklist.Table, layout Layout) ([]Block, Block) {
	blocks := make([]Block, 0, len(tables))
	for _, t := range tables {
		blocks = append(blocks, chapterBlock(t))
	}
	return blocks, totalBlock(layout)
}

// chapterBlock derives one chapter's statistics through structured
// references into its table, so the counts follow the table even if
// rows are later sorted or filtered inside Excel.
func chapterBlock(t checklist.Table) Block {
	block := Block{Heading: t.Chapter.Label()}
	for level := 1; level <= Levels; level++ {
		block.Rows = append(block.Rows, levelRow(t.Name, level))
	}
	return block
}

// levelRow builds one statistics row. The total counts every
// requirement present at the level; each answer count is conjunctive
// over the Fulfilled column and the level column, so requirements
// outside the level are counted nowhere, and the blank answer
// criterion counts the requirements not yet worked through.
func levelRow(table string, level int) []Cell {
	levelName := fmt.Sprintf("Level %d", level)
	row := []Cell{
		{Value: levelName},
		{Formula: fmt.Sprintf("COUNTA(%s[%s])", table, levelName)},
	}
	for _, answer := range checklist.FulfilledValues {
		row = append(row, answerCell(table, levelName, answer))
	}
	row = append(row, answerCell(table, levelName, ""))
	return row
}

// answerCell counts the rows of the table holding the given Fulfilled
// answer among those present at the level.
func answerCell(table, levelName, answer string) Cell {
	return Cell{
		Formula: fmt.Sprintf("COUNTIFS(%s[Fulfilled], %q, %s[%s], \"<>\")", table, answer, table, levelName),
	}
}

// totalBlock sums every statistic across the chapter blocks' rows for
// each level. With no chapters there is nothing to reference and the
// statistics are literal zeros.
func totalBlock(layout Layout) Block {
	block := Block{Heading: TotalHeading}
	for level := 1; level <= Levels; level++ {
		row := []Cell{{Value: fmt.Sprintf("Level %d", level)}}
		for _, col := range statColumns {
			row = append(row, sumCell(layout, col, level))
		}
		block.Rows = append(block.Rows, row)
	}
	return block
}

// sumCell sums one statistics column over the given level's row in
// every chapter block.
func sumCell(layout Layout, col string, level int) Cell {
	if layout.Chapters() == 0 {
		return Cell{Value: 0}
	}
	refs := make([]string, 0, layout.Chapters())
	for i := 0; i < layout.Chapters(); i++ {
		refs = append(refs, fmt.Sprintf("%s%d", col, layout.LevelRow(i, level)))
	}
	return Cell{Formula: fmt.Sprintf("SUM(%s)", strings.Join(refs, ","))}
}
