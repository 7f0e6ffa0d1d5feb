package ui

import (
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const (
	indSize  = 44
	indMid   = indSize / 2
	indBG    = uint32(0x1C1C1E)
	indTextH = 28
	// Width in pixels of one glyph of the "fixed" core font.
	glyphW     = 7
	previewLen = 24
)

// Indicator is a small override-redirect X11 window shown near the focused
// window while recording and processing.
type Indicator struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	wid    xproto.Window
	gc     xproto.Gcontext

	font   xproto.Font
	textGC xproto.Gcontext
	// hasFont is false when the server has no "fixed" font; previews are
	// then not drawn.
	hasFont bool

	mu      sync.Mutex
	state   indicatorState
	preview string

	stop     chan struct{}
	stopOnce sync.Once
}

// NewIndicator connects to the X server named by $DISPLAY.
func NewIndicator() (*Indicator, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("X11: %w", err)
	}
	ind := &Indicator{
		conn:   conn,
		screen: xproto.Setup(conn).DefaultScreen(conn),
		stop:   make(chan struct{}),
	}
	if err := ind.createWindow(); err != nil {
		conn.Close()
		return nil, err
	}
	ind.loadFont()
	go ind.exposeLoop()
	go ind.animate()
	return ind, nil
}

func (ind *Indicator) createWindow() error {
	wid, err := xproto.NewWindowId(ind.conn)
	if err != nil {
		return err
	}
	ind.wid = wid
	if err := xproto.CreateWindowChecked(ind.conn, ind.screen.RootDepth, wid, ind.screen.Root,
		0, 0, indSize, indSize, 0,
		xproto.WindowClassInputOutput, ind.screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		// override_redirect keeps the WM from decorating or focusing it.
		[]uint32{indBG, 1, xproto.EventMaskExposure},
	).Check(); err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	ind.setAtom("_NET_WM_WINDOW_TYPE", "_NET_WM_WINDOW_TYPE_NOTIFICATION")
	ind.setAtom("_NET_WM_STATE", "_NET_WM_STATE_ABOVE")

	gc, err := xproto.NewGcontextId(ind.conn)
	if err != nil {
		return err
	}
	ind.gc = gc
	return xproto.CreateGCChecked(ind.conn, gc, xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcBackground|xproto.GcLineWidth,
		[]uint32{0xFFFFFF, indBG, 2},
	).Check()
}

func (ind *Indicator) loadFont() {
	fid, err := xproto.NewFontId(ind.conn)
	if err != nil {
		return
	}
	if xproto.OpenFontChecked(ind.conn, fid, uint16(len("fixed")), "fixed").Check() != nil {
		return
	}
	tgc, err := xproto.NewGcontextId(ind.conn)
	if err != nil {
		return
	}
	if xproto.CreateGCChecked(ind.conn, tgc, xproto.Drawable(ind.wid),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont,
		[]uint32{0xFFFFFF, indBG, uint32(fid)},
	).Check() != nil {
		return
	}
	ind.font, ind.textGC, ind.hasFont = fid, tgc, true
}

func (ind *Indicator) setAtom(prop, val string) {
	pr, err := xproto.InternAtom(ind.conn, false, uint16(len(prop)), prop).Reply()
	if err != nil || pr.Atom == 0 {
		return
	}
	vr, err := xproto.InternAtom(ind.conn, false, uint16(len(val)), val).Reply()
	if err != nil || vr.Atom == 0 {
		return
	}
	a := vr.Atom
	xproto.ChangeProperty(ind.conn, xproto.PropModeReplace, ind.wid, //nolint:errcheck
		pr.Atom, xproto.AtomAtom, 32, 1,
		[]byte{byte(a), byte(a >> 8), byte(a >> 16), byte(a >> 24)})
}

// Apply switches to state s. A window that is hidden is first moved next to
// the focused window.
func (ind *Indicator) Apply(s indicatorState, preview string) {
	if s == indHidden {
		ind.hide()
		return
	}
	if !ind.hasFont || s != indDone {
		preview = ""
	}
	preview = asciiPreview(preview, previewLen)

	ind.mu.Lock()
	wasHidden := ind.state == indHidden
	ind.state, ind.preview = s, preview
	ind.mu.Unlock()

	w, h := frameSize(preview)
	xproto.ConfigureWindow(ind.conn, ind.wid, //nolint:errcheck
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight, []uint32{uint32(w), uint32(h)})
	if wasHidden {
		x, y := ind.anchor()
		x = clamp16(x-indSize/2, 0, int16(ind.screen.WidthInPixels)-indSize)
		y = clamp16(y-indSize-10, 0, int16(ind.screen.HeightInPixels)-indSize)
		xproto.ConfigureWindow(ind.conn, ind.wid, //nolint:errcheck
			xproto.ConfigWindowX|xproto.ConfigWindowY, []uint32{uint32(x), uint32(y)})
		xproto.MapWindow(ind.conn, ind.wid) //nolint:errcheck
	}
	xproto.ConfigureWindow(ind.conn, ind.wid, //nolint:errcheck
		xproto.ConfigWindowStackMode, []uint32{uint32(xproto.StackModeAbove)})
}

func (ind *Indicator) hide() {
	ind.mu.Lock()
	ind.state, ind.preview = indHidden, ""
	ind.mu.Unlock()
	xproto.UnmapWindow(ind.conn, ind.wid) //nolint:errcheck
}

// Close releases the window and the X connection.
func (ind *Indicator) Close() {
	ind.stopOnce.Do(func() {
		close(ind.stop)
		if ind.hasFont {
			xproto.CloseFont(ind.conn, ind.font) //nolint:errcheck
		}
		xproto.DestroyWindow(ind.conn, ind.wid) //nolint:errcheck
		ind.conn.Close()
	})
}

func (ind *Indicator) snapshot() (indicatorState, string) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.state, ind.preview
}

func (ind *Indicator) animate() {
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	frame := 0
	for {
		select {
		case <-tick.C:
			s, preview := ind.snapshot()
			if s == indHidden {
				frame = 0
				continue
			}
			ind.draw(s, preview, frame)
			frame++
		case <-ind.stop:
			return
		}
	}
}

func (ind *Indicator) exposeLoop() {
	for {
		ev, err := ind.conn.WaitForEvent()
		if err != nil || ev == nil {
			return
		}
		if _, ok := ev.(xproto.ExposeEvent); ok {
			if s, preview := ind.snapshot(); s != indHidden {
				ind.draw(s, preview, 0)
			}
		}
		select {
		case <-ind.stop:
			return
		default:
		}
	}
}

func frameSize(preview string) (w, h uint16) {
	if preview == "" {
		return indSize, indSize
	}
	w = uint16(len(preview)*glyphW + 20)
	if w < 80 {
		w = 80
	}
	return w, indTextH
}

func (ind *Indicator) draw(s indicatorState, preview string, frame int) {
	w, h := frameSize(preview)
	ind.fg(indBG)
	xproto.PolyFillRectangle(ind.conn, xproto.Drawable(ind.wid), ind.gc, //nolint:errcheck
		[]xproto.Rectangle{{Width: w, Height: h}})

	switch s {
	case indRecording:
		ind.circle(indMid, indMid, pulse(frame, 12, 5), 0xFF3B30)
	case indCode:
		ind.square(pulse(frame, 11, 4), 0xBF5AF2)
	case indProcessing:
		ind.spinner(frame)
	case indDone:
		ind.flash(0x30D158, preview)
	case indError:
		ind.flash(0xFF3B30, "")
	}
}

// pulse oscillates around base with the given amplitude over 40 frames.
func pulse(frame, base, amp int) int {
	return base + int(float64(amp)*math.Sin(float64(frame)*2*math.Pi/40))
}

func (ind *Indicator) spinner(frame int) {
	const (
		r     = uint16(17)
		lineW = uint32(4)
		full  = int16(360 * 64)
		sweep = int16(100 * 64)
	)
	arc := xproto.Arc{X: indMid - int16(r), Y: indMid - int16(r), Width: r * 2, Height: r * 2}
	d := xproto.Drawable(ind.wid)

	xproto.ChangeGC(ind.conn, ind.gc, xproto.GcForeground|xproto.GcLineWidth, //nolint:errcheck
		[]uint32{0x0A3060, lineW})
	track := arc
	track.Angle2 = full
	xproto.PolyArc(ind.conn, d, ind.gc, []xproto.Arc{track}) //nolint:errcheck

	ind.fg(0x0A84FF)
	head := arc
	head.Angle1 = int16((frame*18)%360) * 64
	head.Angle2 = sweep
	xproto.PolyArc(ind.conn, d, ind.gc, []xproto.Arc{head}) //nolint:errcheck
}

func (ind *Indicator) flash(color uint32, preview string) {
	if preview == "" {
		ind.circle(indMid, indMid, 17, color)
		return
	}
	ind.circle(11, 14, 6, color)
	xproto.ImageText8(ind.conn, uint8(len(preview)), xproto.Drawable(ind.wid), //nolint:errcheck
		ind.textGC, 22, 19, preview)
}

func (ind *Indicator) circle(x, y, r int, color uint32) {
	ind.fg(color)
	xproto.PolyFillArc(ind.conn, xproto.Drawable(ind.wid), ind.gc, //nolint:errcheck
		[]xproto.Arc{{
			X: int16(x - r), Y: int16(y - r),
			Width: uint16(r * 2), Height: uint16(r * 2),
			Angle2: 360 * 64,
		}})
}

func (ind *Indicator) square(half int, color uint32) {
	ind.fg(color)
	xproto.PolyFillRectangle(ind.conn, xproto.Drawable(ind.wid), ind.gc, //nolint:errcheck
		[]xproto.Rectangle{{
			X: int16(indMid - half), Y: int16(indMid - half),
			Width: uint16(half * 2), Height: uint16(half * 2),
		}})
}

func (ind *Indicator) fg(c uint32) {
	xproto.ChangeGC(ind.conn, ind.gc, xproto.GcForeground, []uint32{c}) //nolint:errcheck
}

// anchor returns the top centre of the focused window, or the pointer
// position when xdotool is unavailable.
func (ind *Indicator) anchor() (int16, int16) {
	if out, err := exec.Command("xdotool", "getwindowfocus", "getwindowgeometry", "--shell").Output(); err == nil {
		g := parseGeometry(string(out))
		if g["WIDTH"] > 0 {
			return int16(g["X"] + g["WIDTH"]/2), int16(g["Y"] + 40)
		}
	}
	if r, err := xproto.QueryPointer(ind.conn, ind.screen.Root).Reply(); err == nil {
		return r.RootX, r.RootY
	}
	return int16(ind.screen.WidthInPixels / 2), int16(ind.screen.HeightInPixels / 2)
}

// parseGeometry reads the KEY=value lines printed by xdotool --shell.
func parseGeometry(s string) map[string]int {
	m := make(map[string]int)
	for _, line := range strings.Split(s, "\n") {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			m[strings.TrimSpace(k)] = n
		}
	}
	return m
}

func clamp16(v, lo, hi int16) int16 {
	return max(lo, min(v, hi))
}
