package main

import (
	"log/slog"

	"github.com/Alijeyrad/gotalk-voicecode/internal/codegen"
	"github.com/Alijeyrad/gotalk-voicecode/internal/config"
	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
	"github.com/Alijeyrad/gotalk-voicecode/internal/speech"
	"github.com/Alijeyrad/gotalk-voicecode/internal/typing"
)

// buildProviders returns the configured transcriber and interpreter. A
// provider that cannot be built is returned as nil; the session then reports
// it as not configured when it is needed.
func buildProviders(cfg *config.Config) (session.Transcriber, session.Interpreter) {
	var (
		tr session.Transcriber
		in session.Interpreter
	)
	t, err := speech.New(cfg.Transcription.Provider, speech.Options{
		APIKey:  cfg.TranscriptionKey(),
		Model:   cfg.Transcription.Model,
		BaseURL: cfg.Transcription.BaseURL,
	})
	if err != nil {
		slog.Error("transcription provider", "error", err)
	} else {
		tr = t
	}

	i, err := codegen.New(cfg.Interpreter.Provider, codegen.Options{
		APIKey:  cfg.InterpreterKey(),
		Model:   cfg.Interpreter.Model,
		BaseURL: cfg.Interpreter.BaseURL,
	})
	if err != nil {
		slog.Error("code generation provider", "error", err)
	} else {
		in = i
	}
	return tr, in
}

func sessionSettings(cfg *config.Config) session.Settings {
	return session.Settings{AutoInsert: cfg.AutoInsert, Language: cfg.Language}
}

func typerOptions(cfg *config.Config) typing.Options {
	return typing.Options{
		EnablePunctuation: cfg.EnablePunctuation,
		UseClipboard:      cfg.UseClipboardInsertion,
	}
}

// applyConfig makes a reloaded config take effect without a restart.
// The processing timeout is fixed at startup.
func (a *app) applyConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	old := a.cfg
	a.cfg = cfg
	a.cfgMu.Unlock()

	tr, in := buildProviders(cfg)
	a.session.Reconfigure(tr, in, sessionSettings(cfg))
	a.typer.SetOptions(typerOptions(cfg))
	a.tray.UpdateConfig(cfg)

	if bindingsChanged(old, cfg) {
		if err := a.registerHotkeys(); err != nil {
			slog.Error("re-registering hotkeys failed", "error", err)
		}
	}
	slog.Info("config applied",
		"transcription", cfg.Transcription.Provider,
		"interpreter", cfg.Interpreter.Provider)
}
