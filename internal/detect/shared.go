package detect

import "strings"

// anyLineContains reports whether any line contains substr.
func anyLineContains(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}

	return false
}

// anyLineContainsAny reports whether any line contains any of substrs.
func anyLineContainsAny(lines []string, substrs []string) bool {
	for _, l := range lines {
		for _, s := range substrs {
			if strings.Contains(l, s) {
				return true
			}
		}
	}

	return false
}

// anyBoxContentContainsAny reports whether any content line of any box
// contains any of substrs.
func anyBoxContentContainsAny(snap Snapshot, substrs []string) bool {
	for _, box := range snap.Boxes {
		for _, l := range box.ContentLines {
			for _, s := range substrs {
				if strings.Contains(l, s) {
					return true
				}
			}
		}
	}

	return false
}

// anyBoxBelowContains reports whether any box's below-lines contain substr.
func anyBoxBelowContains(snap Snapshot, substr string) bool {
	for _, box := range snap.Boxes {
		for _, l := range box.BelowLines {
			if strings.Contains(l, substr) {
				return true
			}
		}
	}

	return false
}

// boxContentLines flattens every box's content lines, used to exclude
// them from whole-screen error scanning.
func boxContentLines(snap Snapshot) map[string]bool {
	set := make(map[string]bool)

	for _, box := range snap.Boxes {
		for _, l := range box.ContentLines {
			set[l] = true
		}
	}

	return set
}

// reverseScanPrefix iterates lines in reverse, returning the first
// whose first non-whitespace codepoint is prefix, stripped of the
// prefix and trimmed. A match whose stripped text is empty counts as
// no context, per spec, rather than falling through to an earlier line.
func reverseScanPrefix(lines []string, prefix rune) (string, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}

		r := []rune(trimmed)
		if r[0] != prefix {
			continue
		}

		ctx := strings.TrimSpace(string(r[1:]))

		return ctx, ctx != ""
	}

	return "", false
}
