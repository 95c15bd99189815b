package render

import (
	"strings"

	"google.golang.org/api/docs/v1"

	"billgen/internal/schema"
)

// foundTable is a located anchor table: the table itself plus the start
// index of its structural element, which table-row requests address.
type foundTable struct {
	table      *docs.Table
	startIndex int64
}

// findItemTable scans every table in the document body and returns the
// first whose header row matches the signature under the given policy.
func findItemTable(doc *docs.Document, signature []string, policy schema.TableMatchPolicy) *foundTable {
	if doc.Body == nil {
		return nil
	}
	for _, elem := range doc.Body.Content {
		if elem.Table == nil || len(elem.Table.TableRows) == 0 {
			continue
		}
		header := rowCellTexts(elem.Table.TableRows[0])
		if matchSignature(header, signature, policy) {
			return &foundTable{table: elem.Table, startIndex: elem.StartIndex}
		}
	}
	return nil
}

// matchSignature compares a table header against an anchor signature.
// Strict means exact ordered equality with the exact column count; lenient
// accepts case-insensitive containment per column and tolerates extra
// columns. The asymmetry between the two is inherited behavior, selected
// explicitly per record type.
func matchSignature(header, signature []string, policy schema.TableMatchPolicy) bool {
	switch policy {
	case schema.MatchStrict:
		if len(header) != len(signature) {
			return false
		}
		for i, want := range signature {
			if strings.TrimSpace(header[i]) != want {
				return false
			}
		}
		return true
	case schema.MatchLenient:
		if len(header) < len(signature) {
			return false
		}
		for i, want := range signature {
			cell := strings.ToLower(strings.TrimSpace(header[i]))
			if !strings.Contains(cell, strings.ToLower(want)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// rowCellTexts extracts the plain text of each cell in a table row.
func rowCellTexts(row *docs.TableRow) []string {
	texts := make([]string, 0, len(row.TableCells))
	for _, cell := range row.TableCells {
		texts = append(texts, strings.TrimSpace(cellText(cell)))
	}
	return texts
}

func cellText(cell *docs.TableCell) string {
	var b strings.Builder
	for _, elem := range cell.Content {
		if elem.Paragraph == nil {
			continue
		}
		for _, pe := range elem.Paragraph.Elements {
			if pe.TextRun != nil {
				b.WriteString(pe.TextRun.Content)
			}
		}
	}
	return b.String()
}

// paragraphText extracts the plain text of a body paragraph.
func paragraphText(p *docs.Paragraph) string {
	var b strings.Builder
	for _, pe := range p.Elements {
		if pe.TextRun != nil {
			b.WriteString(pe.TextRun.Content)
		}
	}
	return b.String()
}
