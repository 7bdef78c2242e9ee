package checklist

// Column describes one worksheet column: its header, width, and the
// formatting applied to its data cells.
type Column struct {
	Header    string
	Width     float64
	Align     string // horizontal alignment of data cells
	VAlign    string // vertical alignment of data cells
	Wrap      bool
	FillColor string // background tint of data cells, empty for none
}

// Columns returns the eight fixed columns of every chapter table. The
// level columns carry progressively darker tints; the free-text columns
// are wide and wrap.
func Columns() []Column {
	return []Column{
		{Header: "Requirement ID", Width: 7, Align: "center", VAlign: "center"},
		{Header: "Section", Width: 50, Align: "left", VAlign: "center"},
		{Header: "Requirement", Width: 50, Align: "left", VAlign: "top", Wrap: true},
		{Header: "Level 1", Width: 10, Align: "center", VAlign: "center", Wrap: true, FillColor: "DCE6F1"},
		{Header: "Level 2", Width: 10, Align: "center", VAlign: "center", Wrap: true, FillColor: "B8CCE4"},
		{Header: "Level 3", Width: 10, Align: "center", VAlign: "center", Wrap: true, FillColor: "95B3D7"},
		{Header: "Fulfilled", Width: 10, Align: "center", VAlign: "center", Wrap: true},
		{Header: "Comment", Width: 50, Align: "left", VAlign: "top", Wrap: true},
	}
}

// FulfilledValues is the dropdown vocabulary of the Fulfilled column.
// The summary statistics count exactly these answers plus the blank
// "no answer yet" state.
var FulfilledValues = []string{"Yes", "No", "Partially", "Not applicable"}

// Message shown when a cell edit falls outside FulfilledValues.
const (
	ValidationErrorTitle   = "Invalid Input"
	ValidationErrorMessage = "Invalid input. Choose Yes, No, Partially or Not applicable."
)

// fulfilledColors maps each answer to its background fill.
var fulfilledColors = map[string]string{
	"Yes":            "ECF1DF",
	"No":             "FFC7CE",
	"Partially":      "FFEB9C",
	"Not applicable": "D3D3D3",
}

// FulfilledColor returns the background fill shown on a Fulfilled cell
// holding the given answer, or empty for answers outside the
// vocabulary.
func FulfilledColor(answer string) string {
	return fulfilledColors[answer]
}
