package domain

import (
	"fmt"
	"strings"
)

// SheetTarget identifies the worksheet the pull requests are synchronized into.
type SheetTarget struct {
	SpreadsheetID string
	SheetName     string
}

// ReadRange is the range covering the whole sheet, header included.
func (t SheetTarget) ReadRange() string {
	return t.quotedName()
}

// AppendRange is the table range new rows are appended to.
func (t SheetTarget) AppendRange() string {
	return fmt.Sprintf("%s!A:%s", t.quotedName(), ColumnLetter(RowWidth-1))
}

// CellRange addresses a single cell; col is zero-based, row is 1-based.
func (t SheetTarget) CellRange(col, row int) string {
	return fmt.Sprintf("%s!%s%d", t.quotedName(), ColumnLetter(col), row)
}

func (t SheetTarget) quotedName() string {
	plain := t.SheetName != ""
	for _, r := range t.SheetName {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			plain = false
			break
		}
	}
	if plain {
		return t.SheetName
	}
	return "'" + strings.ReplaceAll(t.SheetName, "'", "''") + "'"
}

// ColumnLetter converts a zero-based column index to A1 notation.
func ColumnLetter(col int) string {
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// CellUpdate is a single-cell write.
type CellUpdate struct {
	Range string
	Value string
}
