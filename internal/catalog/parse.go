package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Column positions in the published CSV exports. Both schema versions
// share the first six columns; version 4 carries one marker column per
// level, version 5 a single numeric level column.
const (
	colChapterID   = 0
	colChapterName = 1
	colSectionName = 3
	colReqID       = 4
	colDescription = 5
	colLevel1      = 6 // version 4
	colLevel2      = 7
	colLevel3      = 8
	colLevel       = 6 // version 5
)

// levelFunc derives the three level markers from one data row.
type levelFunc func(record []string) (l1, l2, l3 string, err error)

// Parse reads a raw CSV export of the given ASVS schema version into an
// ordered catalog. The first row is the header and is always discarded.
// Chapters are grouped by the chapter ID and name columns in order of
// first appearance; requirements keep their source order within each
// chapter. A row that is too short for the schema, or whose level
// column cannot be interpreted, fails the whole parse.
func Parse(raw string, version int) (*Catalog, error) {
	levels, minFields, err := levelEncoder(version)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1 // the two schema versions differ in width

	if _, err := r.Read(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}

	cat := &Catalog{Version: version}
	byLabel := make(map[string]*Chapter)

	row := 1 // the header row; data rows count from 2
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading catalog row: %w", err)
		}
		row++

		if len(record) < minFields {
			return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", row, minFields, len(record))
		}

		l1, l2, l3, err := levels(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		req := Requirement{
			ID:          stripClassification(record[colReqID]),
			Section:     record[colSectionName],
			Description: record[colDescription],
			Level1:      l1,
			Level2:      l2,
			Level3:      l3,
		}

		label := record[colChapterID] + " " + record[colChapterName]
		ch, ok := byLabel[label]
		if !ok {
			ch = &Chapter{ID: record[colChapterID], Name: record[colChapterName]}
			byLabel[label] = ch
			cat.Chapters = append(cat.Chapters, ch)
		}
		ch.Requirements = append(ch.Requirements, req)
	}

	return cat, nil
}

// levelEncoder selects the per-version marker derivation once, at entry,
// together with the minimum number of columns a data row must carry.
func levelEncoder(version int) (levelFunc, int, error) {
	switch version {
	case 4:
		return levelsVerbatim, colLevel3 + 1, nil
	case 5:
		return levelsFromThreshold, colLevel + 1, nil
	default:
		return nil, 0, fmt.Errorf("unsupported ASVS version %d: supported versions are 4 and 5", version)
	}
}

// levelsVerbatim copies the three marker columns as the source provides
// them. Version 4 exports make no promise that a level-1 requirement is
// also marked at levels 2 and 3.
func levelsVerbatim(record []string) (string, string, string, error) {
	return record[colLevel1], record[colLevel2], record[colLevel3], nil
}

// levelsFromThreshold derives the markers from the single numeric level
// column: a requirement introduced at level n belongs to level n and
// every level above it.
func levelsFromThreshold(record []string) (string, string, string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(record[colLevel]))
	if err != nil {
		return "", "", "", fmt.Errorf("level %q is not a number", record[colLevel])
	}
	return markFrom(n, 1), markFrom(n, 2), markFrom(n, 3), nil
}

// markFrom returns the marker for the given level when the requirement's
// entry level n is at or below it.
func markFrom(n, level int) string {
	if n <= level {
		return LevelMark
	}
	return ""
}

// stripClassification drops the leading classification character from a
// requirement identifier, so "V1.1.1" becomes "1.1.1".
func stripClassification(id string) string {
	_, size := utf8.DecodeRuneInString(id)
	return id[size:]
}
