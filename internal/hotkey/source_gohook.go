package hotkey

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/Alijeyrad/gotalk-voicecode/internal/keys"
)

// GlobalHook is a Source backed by libuiohook through gohook.
type GlobalHook struct {
	mu   sync.Mutex
	done chan struct{}
}

// NewGlobalHook returns a Source that listens to every key on the desktop.
func NewGlobalHook() *GlobalHook {
	return &GlobalHook{}
}

// Start installs the hook. gohook reports key-pressed as KeyHold and
// key-typed as KeyDown; only KeyHold and KeyUp carry a reliable key code.
func (g *GlobalHook) Start() (<-chan KeyEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	raw := hook.Start()
	done := make(chan struct{})
	g.done = done
	out := make(chan KeyEvent, 64)

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case ev, ok := <-raw:
				if !ok {
					return
				}
				var ke KeyEvent
				switch ev.Kind {
				case hook.KeyHold:
					ke = KeyEvent{Code: keys.Code(ev.Keycode), Down: true}
				case hook.KeyUp:
					ke = KeyEvent{Code: keys.Code(ev.Keycode)}
				default:
					continue
				}
				select {
				case out <- ke:
				case <-done:
					return
				}
			}
		}
	}()

	slog.Debug("global key hook started")
	return out, nil
}

// Stop removes the hook.
func (g *GlobalHook) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done == nil {
		return
	}
	close(g.done)
	g.done = nil
	hook.End()
	slog.Debug("global key hook stopped")
}
