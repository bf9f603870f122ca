package screen

import "strings"

const uiBoxContextLines = 4 // K, per spec's "K=4 suffices"

const (
	cornerTopLeft     = '╭'
	cornerTopRight    = '╮'
	cornerBottomLeft  = '╰'
	cornerBottomRight = '╯'
	sideHorizontal    = '─'
	sideVertical      = '│'
)

// Box is a detected rectangular region framed by Unicode box-drawing
// characters. Boxes are derived on demand from a Buffer's current grid
// and are never stored.
type Box struct {
	Top, Bottom int
	Left, Right int

	// ContentLines holds the trimmed text strictly inside the frame.
	ContentLines []string

	// AboveLines/BelowLines hold up to uiBoxContextLines non-empty lines
	// immediately surrounding the box, in source order.
	AboveLines []string
	BelowLines []string
}

// Boxes scans the buffer's current grid for UI boxes and returns them
// in reading order (top-left corner row, then column).
func (b *Buffer) Boxes() []Box {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := make([]string, b.rows)
	for r := 0; r < b.rows; r++ {
		lines[r] = b.rawLineLocked(r)
	}

	var boxes []Box

	for r := 0; r < b.rows; r++ {
		row := []rune(lines[r])

		for c := 0; c < len(row); c++ {
			if row[c] != cornerTopLeft {
				continue
			}

			box, ok := detectBoxAt(lines, r, c)
			if ok {
				boxes = append(boxes, box)
			}
		}
	}

	return boxes
}

// rawLineLocked renders row r (first cols cells), like plainLineLocked
// but without trimming trailing spaces — box-detection padding rules
// need to see trailing space runs.
func (b *Buffer) rawLineLocked(r int) string {
	if r < 0 || r >= len(b.grid) {
		return ""
	}

	row := b.grid[r]

	runes := make([]rune, 0, b.cols)
	for c := 0; c < b.cols && c < len(row); c++ {
		if row[c].IsContinuation() {
			continue
		}

		runes = append(runes, row[c].Rune)
	}

	return string(runes)
}

// detectBoxAt attempts to detect a box whose top-left corner is at
// (topRow, leftCol) in lines. Candidate bottom corners are evaluated in
// order of increasing row, so the first one found satisfying the
// frame is the smallest enclosing rectangle.
func detectBoxAt(lines []string, topRow, leftCol int) (Box, bool) {
	topRune := []rune(lines[topRow])

	rightCol := -1
	for c := leftCol + 1; c < len(topRune); c++ {
		switch topRune[c] {
		case cornerTopRight:
			rightCol = c
		case sideHorizontal, ' ':
			continue
		default:
			return Box{}, false
		}

		if rightCol != -1 {
			break
		}
	}

	if rightCol == -1 {
		return Box{}, false
	}

	for bottomRow := topRow + 1; bottomRow < len(lines); bottomRow++ {
		botRune := []rune(lines[bottomRow])

		if leftCol >= len(botRune) || botRune[leftCol] != cornerBottomLeft {
			if leftCol < len(botRune) && botRune[leftCol] != ' ' && botRune[leftCol] != sideVertical {
				// A non-side, non-space glyph in the left column breaks the
				// frame candidate entirely for this top-left corner.
				break
			}

			continue
		}

		if rightCol >= len(botRune) || botRune[rightCol] != cornerBottomRight {
			continue
		}

		if !verifySides(lines, topRow, bottomRow, leftCol, rightCol) {
			continue
		}

		return buildBox(lines, topRow, bottomRow, leftCol, rightCol), true
	}

	return Box{}, false
}

// verifySides checks that every row strictly between top and bottom
// has the vertical side glyph (or tolerated padding) at leftCol and
// rightCol, and that the top/bottom rows are all horizontal/space
// between the corners.
func verifySides(lines []string, top, bottom, left, right int) bool {
	topRune := []rune(lines[top])
	for c := left + 1; c < right && c < len(topRune); c++ {
		if topRune[c] != sideHorizontal && topRune[c] != ' ' {
			return false
		}
	}

	botRune := []rune(lines[bottom])
	for c := left + 1; c < right && c < len(botRune); c++ {
		if botRune[c] != sideHorizontal && botRune[c] != ' ' {
			return false
		}
	}

	for r := top + 1; r < bottom; r++ {
		row := []rune(lines[r])

		if left < len(row) && row[left] != sideVertical && row[left] != ' ' {
			return false
		}

		if right < len(row) && row[right] != sideVertical && row[right] != ' ' {
			return false
		}
	}

	return true
}

func buildBox(lines []string, top, bottom, left, right int) Box {
	box := Box{Top: top, Bottom: bottom, Left: left, Right: right}

	for r := top + 1; r < bottom; r++ {
		row := []rune(lines[r])

		start := left + 1
		end := right

		if end > len(row) {
			end = len(row)
		}

		if start > end {
			start = end
		}

		content := strings.TrimSpace(string(row[start:end]))
		box.ContentLines = append(box.ContentLines, content)
	}

	box.AboveLines = nonEmptyContext(lines, top-1, -1)
	box.BelowLines = nonEmptyContext(lines, bottom+1, 1)

	return box
}

// nonEmptyContext walks from start in the given direction (-1 upward,
// +1 downward) collecting up to uiBoxContextLines non-empty lines, in
// source order.
func nonEmptyContext(lines []string, start, dir int) []string {
	var collected []string

	for r := start; r >= 0 && r < len(lines) && len(collected) < uiBoxContextLines; r += dir {
		trimmed := strings.TrimSpace(lines[r])
		if trimmed == "" {
			continue
		}

		collected = append(collected, trimmed)
	}

	if dir < 0 {
		for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
			collected[i], collected[j] = collected[j], collected[i]
		}
	}

	return collected
}
