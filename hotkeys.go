package main

import (
	"slices"

	"github.com/Alijeyrad/gotalk-voicecode/internal/config"
)

// registerHotkeys (re)binds the engine to the current config. Register
// replaces any previous bindings.
func (a *app) registerHotkeys() error {
	a.cfgMu.RLock()
	b := a.cfg.Bindings()
	a.cfgMu.RUnlock()
	return a.engine.Register(b)
}

func bindingsChanged(old, cur *config.Config) bool {
	if old == nil {
		return true
	}
	return !slices.Equal(old.StartStop.Keys, cur.StartStop.Keys) ||
		old.StartStop.Mode != cur.StartStop.Mode ||
		!slices.Equal(old.CodeSnippet.Keys, cur.CodeSnippet.Keys) ||
		old.CodeSnippet.Mode != cur.CodeSnippet.Mode ||
		old.CancelKey != cur.CancelKey
}
