// Package layout owns the multi-column placement of category ids.
// EnsurePlacement is the only writer of column membership; every other
// mutation goes through Reorder or the explicit column-count apply.
package layout

import (
	"fmt"

	"github.com/allmytab/startpage/internal/domain"
)

// EnsurePlacement reconciles a layout with the currently visible category
// ids: ids no longer visible are removed, ids missing from every column are
// inserted into the least-populated column (ties broken by lowest column
// index). Returns the reconciled layout and whether it structurally differs
// from the input.
func EnsurePlacement(l domain.Layout, visibleIDs []string) (domain.Layout, bool) {
	out := l.Clone()
	if len(out.Columns) == 0 {
		out = domain.NewLayout(out.ColumnCount)
	}

	visible := make(map[string]bool, len(visibleIDs))
	for _, id := range visibleIDs {
		visible[id] = true
	}

	// Drop placed ids that are no longer visible. Their slot memory is not
	// preserved: a re-appearing category is re-auto-placed.
	seen := make(map[string]bool)
	for c, column := range out.Columns {
		kept := column[:0]
		for _, id := range column {
			if visible[id] && !seen[id] {
				kept = append(kept, id)
				seen[id] = true
			}
		}
		out.Columns[c] = kept
	}

	// Auto-place ids absent from every column.
	for _, id := range visibleIDs {
		if seen[id] {
			continue
		}
		target := 0
		for c := 1; c < len(out.Columns); c++ {
			if len(out.Columns[c]) < len(out.Columns[target]) {
				target = c
			}
		}
		out.Columns[target] = append(out.Columns[target], id)
		seen[id] = true
	}

	return out, !out.Equal(l)
}

// Reorder moves the id at (srcCol, srcIdx) to (dstCol, dstIdx), splicing it
// into the destination position.
func Reorder(l domain.Layout, srcCol, srcIdx, dstCol, dstIdx int) (domain.Layout, error) {
	if srcCol < 0 || srcCol >= len(l.Columns) || dstCol < 0 || dstCol >= len(l.Columns) {
		return l, fmt.Errorf("column out of range: src=%d dst=%d columns=%d", srcCol, dstCol, len(l.Columns))
	}
	if srcIdx < 0 || srcIdx >= len(l.Columns[srcCol]) {
		return l, fmt.Errorf("source index out of range: %d in column %d", srcIdx, srcCol)
	}

	out := l.Clone()
	id := out.Columns[srcCol][srcIdx]
	out.Columns[srcCol] = append(out.Columns[srcCol][:srcIdx], out.Columns[srcCol][srcIdx+1:]...)

	dst := out.Columns[dstCol]
	if dstIdx < 0 {
		dstIdx = 0
	}
	if dstIdx > len(dst) {
		dstIdx = len(dst)
	}
	dst = append(dst, "")
	copy(dst[dstIdx+1:], dst[dstIdx:])
	dst[dstIdx] = id
	out.Columns[dstCol] = dst

	return out, nil
}

// Redistribute reshapes the layout to n columns, spreading the existing ids
// across the new columns in their current column-major order. Shrinking
// never drops a category.
func Redistribute(l domain.Layout, n int) domain.Layout {
	if n < 1 {
		n = 1
	}
	ids := l.CategoryIDs()
	out := domain.NewLayout(n)

	per := len(ids) / n
	extra := len(ids) % n
	pos := 0
	for c := 0; c < n; c++ {
		count := per
		if c < extra {
			count++
		}
		out.Columns[c] = append([]string(nil), ids[pos:pos+count]...)
		pos += count
	}
	return out
}
