package splice

import (
	"fmt"
	"slices"
)

// ValidationError describes an edit whose range does not fit the document.
type ValidationError struct {
	Edit    Edit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.Start, e.Edit.End, e.Message)
}

// ConflictError describes two edits whose ranges overlap.
type ConflictError struct {
	First  Edit
	Second Edit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.First.Start, e.First.End,
		e.Second.Start, e.Second.End)
}

// Validate checks every edit range against a document of length n.
func Validate(edits []Edit, n int) error {
	for _, edit := range edits {
		switch {
		case edit.Start < 0:
			return &ValidationError{Edit: edit, Message: "start offset is negative"}
		case edit.End < edit.Start:
			return &ValidationError{Edit: edit, Message: "end offset is before start offset"}
		case edit.End > n:
			return &ValidationError{
				Edit:    edit,
				Message: fmt.Sprintf("end offset %d exceeds document length %d", edit.End, n),
			}
		}
	}
	return nil
}

// Sort orders edits by start offset, then end offset.
// The sort is stable so insertions at the same offset keep their order.
func Sort(edits []Edit) {
	slices.SortStableFunc(edits, func(a, b Edit) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})
}

// DetectConflicts returns a *ConflictError for the first overlapping pair in
// sorted edits. Adjacent edits and insertions at a boundary do not overlap.
func DetectConflicts(edits []Edit) error {
	for i := 1; i < len(edits); i++ {
		prev, curr := edits[i-1], edits[i]
		if curr.Start < prev.End {
			return &ConflictError{First: prev, Second: curr}
		}
	}
	return nil
}

// Prepare validates edits against a document of length n, sorts a copy, and
// rejects overlaps.
func Prepare(edits []Edit, n int) ([]Edit, error) {
	if len(edits) == 0 {
		return nil, nil
	}

	if err := Validate(edits, n); err != nil {
		return nil, err
	}

	sorted := slices.Clone(edits)
	Sort(sorted)

	if err := DetectConflicts(sorted); err != nil {
		return nil, err
	}

	return sorted, nil
}

// MergeDeletions folds overlapping pure deletions of sorted edits into one
// deletion covering their union. Overlapping edits that are not both
// deletions are left untouched for DetectConflicts to report.
func MergeDeletions(edits []Edit) []Edit {
	if len(edits) < 2 {
		return edits
	}

	merged := make([]Edit, 0, len(edits))
	current := edits[0]
	for _, edit := range edits[1:] {
		if edit.Start < current.End && edit.Text == "" && current.Text == "" {
			current.End = max(current.End, edit.End)
			continue
		}
		merged = append(merged, current)
		current = edit
	}
	return append(merged, current)
}
