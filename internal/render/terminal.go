package render

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"spikejump/internal/scape"
)

const (
	jumperRune = '█'
	spikeRune  = '^'
	floorRune  = '▔'
)

// Screen is the subset of tcell.Screen the sink draws with.
type Screen interface {
	Size() (int, int)
	Clear()
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Show()
}

type Option func(*TerminalSink)

// WithFrameDelay paces drawing so a session can be watched in real time.
func WithFrameDelay(d time.Duration) Option {
	return func(s *TerminalSink) {
		s.delay = d
	}
}

func WithPalette(p *Palette) Option {
	return func(s *TerminalSink) {
		if p != nil {
			s.palette = p
		}
	}
}

// TerminalSink draws each frame onto a terminal screen: the lane scaled to
// the screen with one status line at the bottom.
type TerminalSink struct {
	screen  Screen
	palette *Palette
	delay   time.Duration
	sleep   func(time.Duration)
}

func NewTerminalSink(screen Screen, opts ...Option) *TerminalSink {
	s := &TerminalSink{
		screen:  screen,
		palette: NewPalette(),
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TerminalSink) Draw(frame scape.Frame) {
	width, height := s.screen.Size()
	rows := height - 1
	if width <= 0 || rows <= 0 || frame.LaneWidth <= 0 || frame.LaneHeight <= 0 {
		return
	}
	s.screen.Clear()

	floor := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for x := 0; x < width; x++ {
		s.screen.SetContent(x, rows-1, floorRune, nil, floor)
	}

	spikeStyle := tcell.StyleDefault.Foreground(tcell.ColorRed)
	for _, spike := range frame.Spikes {
		s.fill(spike, frame, width, rows, spikeRune, spikeStyle)
	}
	for _, j := range frame.Jumpers {
		style := tcell.StyleDefault.Foreground(s.palette.Color(j.ID))
		if j.Jumping {
			style = style.Bold(true)
		}
		s.fill(j.Rect, frame, width, rows, jumperRune, style)
	}

	// High score leads so a narrow terminal still shows it.
	status := fmt.Sprintf("high score %d  tick %d  active %d", frame.HighScore, frame.Tick, len(frame.Jumpers))
	s.text(0, height-1, width, status, tcell.StyleDefault.Reverse(true))
	s.screen.Show()

	if s.delay > 0 {
		s.sleep(s.delay)
	}
}

// fill paints every cell the rectangle touches, clipped to the lane area.
func (s *TerminalSink) fill(r scape.Rect, frame scape.Frame, width, rows int, ch rune, style tcell.Style) {
	x0 := toCell(r.Left(), frame.LaneWidth, width, false)
	x1 := toCell(r.Right(), frame.LaneWidth, width, true)
	y0 := toCell(r.Top(), frame.LaneHeight, rows, false)
	y1 := toCell(r.Bottom(), frame.LaneHeight, rows, true)
	for y := max(y0, 0); y <= min(y1, rows-1); y++ {
		for x := max(x0, 0); x <= min(x1, width-1); x++ {
			s.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

// text writes msg from column x, clipped at width.
func (s *TerminalSink) text(x, y, width int, msg string, style tcell.Style) {
	for _, r := range msg {
		if x >= width {
			return
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// toCell maps a lane coordinate to a cell index. Far edges are exclusive, so
// they round down from just inside the rectangle.
func toCell(v, extent float64, cells int, farEdge bool) int {
	scaled := v / extent * float64(cells)
	if farEdge {
		return int(math.Ceil(scaled)) - 1
	}
	return int(math.Floor(scaled))
}
