// Package rowcodec maps domain records to and from the flat positional rows
// the sheets store. Fixed header fields are placed by a name→index map built
// from the live header, so reordered columns keep working; renamed or
// missing columns fail fast. The repeating item block is addressed by slot
// arithmetic instead, because its column labels embed the row number.
package rowcodec

import (
	"errors"
	"fmt"
	"strings"

	"billgen/internal/schema"
	"billgen/pkg/models"
)

// ErrMissingColumn is returned when a required header column is absent from
// the live sheet header.
var ErrMissingColumn = errors.New("required column missing from sheet header")

// textEscape forces the storage engine to keep a cell as literal text.
// Period-like values ("01-03/2024") would otherwise be reinterpreted as
// dates on write.
const textEscape = "'"

// fieldIndex builds the name→index map from a live header.
func fieldIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

// put places value into row at the column named name, or fails with
// ErrMissingColumn when the header lacks it.
func put(row []string, idx map[string]int, name, value string) error {
	i, ok := idx[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	row[i] = value
	return nil
}

// get reads the column named name, or "" when the header lacks it or the
// row is short. Decode never fails on absent optional fields.
func get(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimPrefix(row[i], textEscape)
}

// encodeItems flattens items into the fixed-width block declared by layout.
// Each item's first cell is overwritten with its 1-based position; excess
// items are truncated, missing slots blank-padded. itemCols supplies the
// per-cell column labels so period-like cells get the text escape.
func encodeItems(items []models.LineItem, layout schema.ItemBlockLayout, itemCols []string) []string {
	block := make([]string, layout.Width())
	for n, item := range items {
		if n >= layout.MaxRows {
			break
		}
		base := n * layout.ColumnsPerItem
		for c := 0; c < layout.ColumnsPerItem; c++ {
			var v string
			if c < len(item) {
				v = item[c]
			}
			if c == 0 {
				v = fmt.Sprint(n + 1)
			} else if v != "" && schema.PeriodLikeColumn(itemCols[c]) {
				v = textEscape + v
			}
			block[base+c] = v
		}
	}
	return block
}

// decodeItems parses the item block back out of a flat row. An item is kept
// only if at least one of its cells is non-blank after trimming, which turns
// the fixed-width physical block into a variable-length logical list.
func decodeItems(row []string, layout schema.ItemBlockLayout) []models.LineItem {
	var items []models.LineItem
	for n := 0; n < layout.MaxRows; n++ {
		item := make(models.LineItem, layout.ColumnsPerItem)
		present := false
		for c := 0; c < layout.ColumnsPerItem; c++ {
			i := layout.StartColumn + n*layout.ColumnsPerItem + c
			if i < len(row) {
				item[c] = strings.TrimPrefix(row[i], textEscape)
			}
			if strings.TrimSpace(item[c]) != "" {
				present = true
			}
		}
		if present {
			items = append(items, item)
		}
	}
	return items
}

// FindByID returns the index of the row whose idCol cell equals id. The
// second result distinguishes a genuinely absent record from one that
// happens to have empty fields.
func FindByID(rows [][]string, idCol int, id string) (int, bool) {
	for i, row := range rows {
		if idCol < len(row) && strings.TrimSpace(row[idCol]) == strings.TrimSpace(id) {
			return i, true
		}
	}
	return 0, false
}

// rowWidth is the exact encoded width for a layout: the fixed columns plus
// the full reserved item block.
func rowWidth(layout schema.ItemBlockLayout) int {
	return layout.StartColumn + layout.Width()
}
