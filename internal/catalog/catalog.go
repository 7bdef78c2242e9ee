// Package catalog normalizes the raw OWASP ASVS CSV export into
// chapter-grouped requirement records, preserving source order.
package catalog

// LevelMark is the marker stored for a level a requirement belongs to.
const LevelMark = "✓"

// Requirement is one verification requirement as it appears on a
// chapter worksheet. The three level fields hold LevelMark when the
// requirement applies at that level and are empty otherwise (version 4
// exports may carry other marker text verbatim). Fulfilled and Comment
// start empty; they belong to the person working through the checklist.
type Requirement struct {
	ID          string
	Section     string
	Description string
	Level1      string
	Level2      string
	Level3      string
	Fulfilled   string
	Comment     string
}

// Row serializes the requirement as the eight worksheet columns, in
// column order.
func (r Requirement) Row() []string {
	return []string{
		r.ID,
		r.Section,
		r.Description,
		r.Level1,
		r.Level2,
		r.Level3,
		r.Fulfilled,
		r.Comment,
	}
}

// Chapter is one ASVS chapter and its requirements, in source order.
type Chapter struct {
	ID           string
	Name         string
	Requirements []Requirement
}

// Label returns the chapter's grouping key, e.g. "V1 Architecture".
func (c *Chapter) Label() string {
	return c.ID + " " + c.Name
}

// Catalog is a fully parsed ASVS export. Chapters appear in order of
// first occurrence in the source.
type Catalog struct {
	Version  int
	Chapters []*Chapter
}
