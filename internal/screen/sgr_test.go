package screen

import "testing"

func TestApplySGRBoldAndReset(t *testing.T) {
	b := New(1, 10)
	b.Write([]byte("\x1b[1mx\x1b[0my"))

	bold := b.grid[0][0]
	if bold.Attrs&AttrBold == 0 {
		t.Fatalf("cell 0 Attrs = %v, want AttrBold set", bold.Attrs)
	}

	reset := b.grid[0][1]
	if reset.Attrs&AttrBold != 0 {
		t.Fatalf("cell 1 Attrs = %v, want AttrBold cleared after SGR 0", reset.Attrs)
	}
}

func TestApplySGRIndexedForeground(t *testing.T) {
	b := New(1, 10)
	b.Write([]byte("\x1b[32mx"))

	cell := b.grid[0][0]
	if cell.FG.Kind != ColorIndexed || cell.FG.Idx != 2 {
		t.Fatalf("cell FG = %+v, want indexed color 2", cell.FG)
	}
}

func TestApplySGRExtended256Foreground(t *testing.T) {
	b := New(1, 10)
	b.Write([]byte("\x1b[38;5;200mx"))

	cell := b.grid[0][0]
	if cell.FG.Kind != ColorIndexed || cell.FG.Idx != 200 {
		t.Fatalf("cell FG = %+v, want indexed color 200", cell.FG)
	}
}

func TestApplySGRExtendedRGBBackground(t *testing.T) {
	b := New(1, 10)
	b.Write([]byte("\x1b[48;2;10;20;30mx"))

	cell := b.grid[0][0]
	if cell.BG.Kind != ColorRGB || cell.BG.R != 10 || cell.BG.G != 20 || cell.BG.B != 30 {
		t.Fatalf("cell BG = %+v, want RGB(10,20,30)", cell.BG)
	}
}

func TestApplySGRDefaultForeground(t *testing.T) {
	b := New(1, 10)
	b.Write([]byte("\x1b[31mx\x1b[39my"))

	cell := b.grid[0][1]
	if cell.FG.Kind != ColorDefault {
		t.Fatalf("cell FG = %+v, want default after SGR 39", cell.FG)
	}
}

func TestApplySGRMalformedExtendedFallsBackToDefault(t *testing.T) {
	b := New(1, 10)
	b.Write([]byte("\x1b[38mx"))

	cell := b.grid[0][0]
	if cell.FG.Kind != ColorDefault {
		t.Fatalf("cell FG = %+v, want default for malformed 38 sequence", cell.FG)
	}
}
