package hotkey

import "github.com/Alijeyrad/gotalk-voicecode/internal/keys"

// KeyEvent is a raw key transition delivered by the OS hook.
type KeyEvent struct {
	Code keys.Code
	Down bool
}

// Source delivers global key events. Start is called once per listening
// period; Stop ends it and may close the channel.
type Source interface {
	Start() (<-chan KeyEvent, error)
	Stop()
}
