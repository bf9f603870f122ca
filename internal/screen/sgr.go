package screen

// applySGR applies a parsed CSI...m parameter list to b's current
// rendition state. An empty list is equivalent to a single 0 (reset).
func applySGR(b *Buffer, params []int) {
	if len(params) == 0 {
		params = []int{0}
	}

	for i := 0; i < len(params); i++ {
		p := params[i]

		switch {
		case p == 0:
			b.curFG = DefaultColor
			b.curBG = DefaultColor
			b.curAttrs = 0
		case p == 1:
			b.curAttrs |= AttrBold
		case p == 2:
			b.curAttrs |= AttrDim
		case p == 3:
			b.curAttrs |= AttrItalic
		case p == 4:
			b.curAttrs |= AttrUnderline
		case p == 5:
			b.curAttrs |= AttrBlink
		case p == 7:
			b.curAttrs |= AttrReverse
		case p == 8:
			b.curAttrs |= AttrHidden
		case p == 9:
			b.curAttrs |= AttrStrikethrough
		case p == 22:
			b.curAttrs &^= AttrBold | AttrDim
		case p == 23:
			b.curAttrs &^= AttrItalic
		case p == 24:
			b.curAttrs &^= AttrUnderline
		case p == 25:
			b.curAttrs &^= AttrBlink
		case p == 27:
			b.curAttrs &^= AttrReverse
		case p == 28:
			b.curAttrs &^= AttrHidden
		case p == 29:
			b.curAttrs &^= AttrStrikethrough
		case p >= 30 && p <= 37:
			b.curFG = Color{Kind: ColorIndexed, Idx: uint8(p - 30)}
		case p == 38:
			col, consumed := parseExtendedColor(params[i+1:])
			b.curFG = col
			i += consumed
		case p == 39:
			b.curFG = DefaultColor
		case p >= 40 && p <= 47:
			b.curBG = Color{Kind: ColorIndexed, Idx: uint8(p - 40)}
		case p == 48:
			col, consumed := parseExtendedColor(params[i+1:])
			b.curBG = col
			i += consumed
		case p == 49:
			b.curBG = DefaultColor
		case p >= 90 && p <= 97:
			b.curFG = Color{Kind: ColorIndexed, Idx: uint8(p - 90 + 8)}
		case p >= 100 && p <= 107:
			b.curBG = Color{Kind: ColorIndexed, Idx: uint8(p - 100 + 8)}
		}
	}
}

// parseExtendedColor parses the tail of a 38;... or 48;... sequence,
// returning the decoded color and how many extra params it consumed.
func parseExtendedColor(rest []int) (Color, int) {
	if len(rest) == 0 {
		return DefaultColor, 0
	}

	switch rest[0] {
	case 5: // indexed
		if len(rest) < 2 {
			return DefaultColor, len(rest)
		}

		return Color{Kind: ColorIndexed, Idx: uint8(rest[1])}, 2
	case 2: // RGB
		if len(rest) < 4 {
			return DefaultColor, len(rest)
		}

		return Color{Kind: ColorRGB, R: uint8(rest[1]), G: uint8(rest[2]), B: uint8(rest[3])}, 4
	default:
		return DefaultColor, len(rest)
	}
}
