// Package completion edits a habit's completion set.
package completion

import "slices"

// Toggle returns the completion set after marking (mark=true) or unmarking date.
// The input slice is never modified. Marking an already completed date and
// unmarking an absent date both return the set unchanged; unmarking removes
// every occurrence so stray duplicates do not survive.
func Toggle(dates []string, date string, mark bool) []string {
	present := slices.Contains(dates, date)

	if mark {
		out := slices.Clone(dates)
		if out == nil {
			out = []string{}
		}
		if present {
			return out
		}
		return append(out, date)
	}

	if !present {
		if dates == nil {
			return []string{}
		}
		return slices.Clone(dates)
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if d != date {
			out = append(out, d)
		}
	}
	return out
}

// CountInMonth counts completion dates that fall inside the given YYYY-MM prefix.
func CountInMonth(dates []string, yearMonth string) int {
	n := 0
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if len(d) < len(yearMonth) || d[:len(yearMonth)] != yearMonth {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		n++
	}
	return n
}

// Set builds a membership set from a completion list.
func Set(dates []string) map[string]bool {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}
