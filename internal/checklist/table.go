// Package checklist derives the per-chapter worksheet tables of the
// generated workbook: their names, their fixed column set, and the
// fulfillment vocabulary shared by the dropdown, the status coloring,
// and the summary statistics.
package checklist

import (
	"fmt"
	"strings"

	"github.com/m4uz/asvs-xgen/internal/catalog"
)

// maxSheetNameRunes is the longest worksheet name Excel accepts (31
// characters); chapter labels are truncated one short of that.
const maxSheetNameRunes = 30

// Table binds one chapter to the worksheet and named Excel table that
// realize it.
type Table struct {
	SheetName string
	Name      string
	Chapter   *catalog.Chapter
}

// Build derives one table per catalog chapter, in catalog order. The
// worksheet name is the chapter label truncated to fit Excel's limit;
// the table name derives from the label's first token. Two chapters
// landing on the same worksheet or table name is an error, never a
// silent overwrite.
func Build(cat *catalog.Catalog) ([]Table, error) {
	tables := make([]Table, 0, len(cat.Chapters))
	sheetSeen := make(map[string]string) // worksheet name -> chapter label
	nameSeen := make(map[string]string)  // table name -> chapter label

	for _, ch := range cat.Chapters {
		label := ch.Label()
		sheet := truncate(label, maxSheetNameRunes)
		name := tableName(label)

		if prev, ok := sheetSeen[sheet]; ok {
			return nil, fmt.Errorf("chapters %q and %q truncate to the same worksheet name %q", prev, label, sheet)
		}
		if prev, ok := nameSeen[name]; ok {
			return nil, fmt.Errorf("chapters %q and %q derive the same table name %q", prev, label, name)
		}
		sheetSeen[sheet] = label
		nameSeen[name] = label

		tables = append(tables, Table{SheetName: sheet, Name: name, Chapter: ch})
	}

	return tables, nil
}

// tableName derives the Excel table identifier from a chapter label:
// "V1 Architecture" becomes "table_v1".
func tableName(label string) string {
	return "table_" + strings.ToLower(strings.Split(label, " ")[0])
}

// truncate limits a string to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
