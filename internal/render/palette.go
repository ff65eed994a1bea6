package render

import "github.com/gdamore/tcell/v2"

var defaultColors = []tcell.Color{
	tcell.ColorGreen,
	tcell.ColorBlue,
	tcell.ColorYellow,
	tcell.ColorPurple,
	tcell.ColorAqua,
	tcell.ColorOrange,
	tcell.ColorFuchsia,
	tcell.ColorLime,
}

// Palette hands out jumper colours keyed by id, in first-seen order. The
// simulation never sees colours.
type Palette struct {
	colors   []tcell.Color
	assigned map[string]tcell.Color
}

func NewPalette(colors ...tcell.Color) *Palette {
	if len(colors) == 0 {
		colors = defaultColors
	}
	return &Palette{
		colors:   append([]tcell.Color(nil), colors...),
		assigned: make(map[string]tcell.Color),
	}
}

func (p *Palette) Color(id string) tcell.Color {
	if c, ok := p.assigned[id]; ok {
		return c
	}
	c := p.colors[len(p.assigned)%len(p.colors)]
	p.assigned[id] = c
	return c
}
