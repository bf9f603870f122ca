// Package screen reconstructs the visible grid of an xterm-class terminal
// from a raw ANSI/VT byte stream, the way a PTY-wrapping launcher needs in
// order to classify what the wrapped program is currently doing.
package screen

// Attr is a bitmask of SGR rendition flags tracked on a Cell.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrHidden
	AttrStrikethrough
)

// Cell is a single grid position: a rune plus its rendition.
type Cell struct {
	Rune  rune
	FG    Color
	BG    Color
	Attrs Attr

	// continuation marks this cell as the second half of a wide glyph
	// painted into the preceding column; it carries no rune of its own.
	continuation bool
}

// IsContinuation reports whether this cell is the trailing half of a wide
// glyph occupying the previous column.
func (c Cell) IsContinuation() bool {
	return c.continuation
}

// blank returns the cleared-cell value for the given background/attrs,
// i.e. what ED/EL erase operations paint over the grid.
func blankCell(bg Color) Cell {
	return Cell{Rune: ' ', BG: bg}
}

// Color represents a terminal color: either the default, a 256-color
// index, or a 24-bit RGB triple.
type Color struct {
	Kind ColorKind
	Idx  uint8
	R, G, B uint8
}

// ColorKind discriminates a Color's representation.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed
	ColorRGB
)

// DefaultColor is the terminal's default foreground/background.
var DefaultColor = Color{Kind: ColorDefault}
