package screen

import (
	"io"
	"sync"

	"github.com/mattn/go-runewidth"
)

// Buffer is a rectangular grid of cells that reconstructs the visible
// screen of a wrapped terminal application from a raw VT byte stream.
//
// The grid is rows x (cols+1): the extra trailing column is a sentinel
// that absorbs cursor-wraparound writes so that relative-cursor-movement
// UI redraws (common in interactive AI assistants) don't double-emit a
// box-drawing frame. Consumers only ever see the first cols columns of
// each row (see Lines).
type Buffer struct {
	mu sync.Mutex

	rows, cols int // cols is the advertised width; the grid is rows x (cols+1)
	grid       [][]Cell

	curRow, curCol int
	savedRow       int
	savedCol       int
	hasSaved       bool

	curFG, curBG Color
	curAttrs     Attr

	scrollTop, scrollBottom int // inclusive, 0-based

	autowrap bool

	// TraceSink receives the pre-clear content of a line whenever an
	// EL-2 (erase entire line) sequence is processed while Verbose is
	// true. Defaults to io.Discard.
	TraceSink io.Writer
	Verbose   bool

	parser parserState
}

// New creates a Buffer sized to rows x cols. Dimensions are clamped to
// be at least 1x1.
func New(rows, cols int) *Buffer {
	if rows < 1 {
		rows = 1
	}

	if cols < 1 {
		cols = 1
	}

	b := &Buffer{
		rows:         rows,
		cols:         cols,
		autowrap:     true,
		scrollBottom: rows - 1,
		TraceSink:    io.Discard,
	}
	b.grid = newGrid(rows, cols)
	b.parser.reset()

	return b
}

func newGrid(rows, cols int) [][]Cell {
	grid := make([][]Cell, rows)
	for i := range grid {
		grid[i] = make([]Cell, cols+1)
		for j := range grid[i] {
			grid[i][j] = Cell{Rune: ' '}
		}
	}

	return grid
}

// Dimensions returns the advertised (rows, cols) — not the internal
// rows x (cols+1) grid size.
func (b *Buffer) Dimensions() (rows, cols int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.rows, b.cols
}

// Cursor returns the current cursor position, clamped to the reported
// bounds: row in [0, rows), col in [0, cols+1).
func (b *Buffer) Cursor() (row, col int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.curRow, b.curCol
}

// Resize adjusts the grid to new dimensions, preserving as much content
// as possible (top-left anchored). Cursor position is clamped into the
// new bounds.
func (b *Buffer) Resize(rows, cols int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if rows < 1 {
		rows = 1
	}

	if cols < 1 {
		cols = 1
	}

	newGrid := newGrid(rows, cols)

	copyRows := rows
	if len(b.grid) < copyRows {
		copyRows = len(b.grid)
	}

	for r := 0; r < copyRows; r++ {
		copyCols := cols + 1
		if len(b.grid[r]) < copyCols {
			copyCols = len(b.grid[r])
		}

		copy(newGrid[r][:copyCols], b.grid[r][:copyCols])
	}

	b.grid = newGrid
	b.rows = rows
	b.cols = cols
	b.scrollTop = 0
	b.scrollBottom = rows - 1

	if b.curRow >= rows {
		b.curRow = rows - 1
	}

	if b.curCol > cols {
		b.curCol = cols
	}
}

// Write feeds a chunk of raw VT byte stream into the parser. Feeding the
// same logical stream split across any chunk boundaries produces the
// same resulting grid as feeding it as one chunk.
func (b *Buffer) Write(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.parser.feed(b, p)
}

// Lines returns the currently visible rows, each truncated to the
// advertised column width (the sentinel column is never reported).
// Lines returns one entry per visible row. Wide-glyph continuation
// cells are skipped, so a wide glyph contributes a single rune, and
// trailing spaces are trimmed; rune positions in a line therefore do
// not map 1:1 to grid columns.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, b.rows)

	for r := 0; r < b.rows; r++ {
		out[r] = b.plainLineLocked(r)
	}

	return out
}

// plainLineLocked renders row r (first cols cells only) to a string,
// skipping continuation cells (the second half of wide glyphs).
func (b *Buffer) plainLineLocked(r int) string {
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

	return trimTrailingSpace(string(runes))
}

func trimTrailingSpace(s string) string {
	end := len(s)
	for end > 0 && s[end-1] == ' ' {
		end--
	}

	return s[:end]
}

// cellWidth returns the display width of r (1 or 2), treating control
// and zero-width runes as width 1 for grid-advancement purposes — the
// buffer never stores control characters as printable cells.
func cellWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		return 1
	}

	return w
}

// --- cursor movement & erase primitives, invoked by the parser ---

func (b *Buffer) moveCursor(row, col int) {
	b.curRow = clamp(row, 0, b.rows-1)
	b.curCol = clamp(col, 0, b.cols) // sentinel column cols is valid
}

func (b *Buffer) cursorUp(n int) {
	b.moveCursor(b.curRow-n, b.curCol)
}

func (b *Buffer) cursorDown(n int) {
	b.moveCursor(b.curRow+n, b.curCol)
}

func (b *Buffer) cursorForward(n int) {
	b.moveCursor(b.curRow, b.curCol+n)
}

func (b *Buffer) cursorBack(n int) {
	b.moveCursor(b.curRow, b.curCol-n)
}

func (b *Buffer) carriageReturn() {
	b.curCol = 0
}

func (b *Buffer) lineFeed() {
	if b.curRow == b.scrollBottom {
		b.scrollUp(1)
		return
	}

	if b.curRow < b.rows-1 {
		b.curRow++
	}
}

func (b *Buffer) backspace() {
	if b.curCol > 0 {
		b.curCol--
	}
}

func (b *Buffer) tab() {
	next := (b.curCol/8 + 1) * 8
	if next > b.cols {
		next = b.cols
	}

	b.curCol = next
}

func (b *Buffer) saveCursor() {
	b.savedRow, b.savedCol = b.curRow, b.curCol
	b.hasSaved = true
}

func (b *Buffer) restoreCursor() {
	if !b.hasSaved {
		return
	}

	b.moveCursor(b.savedRow, b.savedCol)
}

func (b *Buffer) setScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}

	if bottom >= b.rows || bottom < 0 {
		bottom = b.rows - 1
	}

	if top >= bottom {
		top, bottom = 0, b.rows-1
	}

	b.scrollTop, b.scrollBottom = top, bottom
}

func (b *Buffer) scrollUp(n int) {
	for i := 0; i < n; i++ {
		b.traceLine(b.scrollTop)

		copy(b.grid[b.scrollTop:b.scrollBottom], b.grid[b.scrollTop+1:b.scrollBottom+1])
		b.grid[b.scrollBottom] = blankRow(b.cols, b.curBG)
	}
}

func blankRow(cols int, bg Color) []Cell {
	row := make([]Cell, cols+1)
	for i := range row {
		row[i] = blankCell(bg)
	}

	return row
}

// traceLine emits the pre-clear content of row r to TraceSink if
// verbose tracing is enabled. Used both by EL-2 and by scroll eviction,
// mirroring spec's "diagnose UI-frame duplication" rationale.
func (b *Buffer) traceLine(r int) {
	if !b.Verbose || b.TraceSink == nil {
		return
	}

	if r < 0 || r >= len(b.grid) {
		return
	}

	line := b.plainLineLocked(r)
	if line == "" {
		return
	}

	_, _ = b.TraceSink.Write([]byte(line + "\n"))
}

// eraseInLine implements EL with parameters 0 (cursor to end), 1 (start
// to cursor), 2 (entire line).
func (b *Buffer) eraseInLine(mode int) {
	row := b.grid[b.curRow]

	switch mode {
	case 0:
		for c := b.curCol; c < len(row); c++ {
			row[c] = blankCell(b.curBG)
		}
	case 1:
		for c := 0; c <= b.curCol && c < len(row); c++ {
			row[c] = blankCell(b.curBG)
		}
	case 2:
		b.traceLine(b.curRow)

		for c := range row {
			row[c] = blankCell(b.curBG)
		}
	}
}

// eraseInDisplay implements ED with parameters 0 (cursor to end of
// screen), 1 (start of screen to cursor), 2 (entire screen).
func (b *Buffer) eraseInDisplay(mode int) {
	switch mode {
	case 0:
		b.eraseInLine(0)

		for r := b.curRow + 1; r < b.rows; r++ {
			b.clearRow(r)
		}
	case 1:
		b.eraseInLine(1)

		for r := 0; r < b.curRow; r++ {
			b.clearRow(r)
		}
	case 2:
		for r := 0; r < b.rows; r++ {
			b.clearRow(r)
		}
	}
}

func (b *Buffer) clearRow(r int) {
	row := b.grid[r]
	for c := range row {
		row[c] = blankCell(b.curBG)
	}
}

// put writes r at the current cursor position, advancing the cursor and
// performing the sentinel-column wraparound described in spec: a cursor
// that has advanced into the sentinel column (cols) and then receives
// another printable character takes an implicit CR+LF before the write,
// rather than
// wrapping the moment the cursor reaches column cols.
func (b *Buffer) put(r rune) {
	w := cellWidth(r)

	// Cursor resting in the sentinel column (b.cols): a printable
	// character forces an implicit CR+LF before the write.
	if b.curCol >= b.cols {
		if b.autowrap {
			b.carriageReturn()
			b.lineFeed()
		} else {
			b.curCol = b.cols - 1
		}
	}

	// A wide glyph that would straddle the sentinel column also wraps,
	// rather than splitting across the row boundary.
	if w == 2 && b.curCol == b.cols-1 && b.autowrap {
		b.carriageReturn()
		b.lineFeed()
	}

	row := b.grid[b.curRow]
	row[b.curCol] = Cell{Rune: r, FG: b.curFG, BG: b.curBG, Attrs: b.curAttrs}
	b.curCol++

	if w == 2 && b.curCol < len(row) {
		row[b.curCol] = Cell{Rune: ' ', continuation: true, FG: b.curFG, BG: b.curBG, Attrs: b.curAttrs}
		b.curCol++
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}

	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
