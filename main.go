package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Alijeyrad/gotalk-voicecode/internal/audio"
	"github.com/Alijeyrad/gotalk-voicecode/internal/config"
	"github.com/Alijeyrad/gotalk-voicecode/internal/history"
	"github.com/Alijeyrad/gotalk-voicecode/internal/hotkey"
	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
	"github.com/Alijeyrad/gotalk-voicecode/internal/typing"
	"github.com/Alijeyrad/gotalk-voicecode/internal/ui"
)

type app struct {
	cfgPath string

	cfgMu sync.RWMutex
	cfg   *config.Config

	engine   *hotkey.Engine
	session  *session.Orchestrator
	typer    *typing.Typer
	recorder *audio.Recorder
	tray     *ui.Tray
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	cfgPath := flag.String("config", config.Path(), "path to config.json")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.LoadFrom(*cfgPath)
	if err != nil {
		slog.Warn("config unreadable, using defaults", "path", *cfgPath, "error", err)
		cfg = config.Default()
	}

	if err := os.MkdirAll(filepath.Dir(*cfgPath), 0755); err != nil {
		slog.Warn("creating config dir", "error", err)
	}

	store := history.NewStore(filepath.Join(filepath.Dir(*cfgPath), "history.json"))
	past, err := store.Load()
	if err != nil {
		slog.Warn("history unreadable, starting empty", "path", store.Path(), "error", err)
	}

	a := &app{
		cfgPath:  *cfgPath,
		cfg:      cfg,
		recorder: &audio.Recorder{Name: "GoTalk VoiceCode"},
		typer:    typing.New(typerOptions(cfg)),
		engine:   hotkey.NewEngine(hotkey.NewGlobalHook()),
		tray:     ui.NewTray(cfg),
	}

	tr, in := buildProviders(cfg)
	a.session, err = session.New(session.Options{
		Capturer:    a.recorder,
		Transcriber: tr,
		Interpreter: in,
		Inserter:    a.typer,
		Settings:    sessionSettings(cfg),
		Store:       store,
		History:     past,
		Observer:    a.tray.Observe,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
	})
	if err != nil {
		slog.Error("session setup failed", "error", err)
		os.Exit(1)
	}

	if err := a.registerHotkeys(); err != nil {
		slog.Error("hotkeys unavailable", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.tray.Controls = a.session
	a.tray.OnUndo = a.typer.Undo
	a.tray.OnSettingsSave = a.saveConfig
	a.tray.OnQuit = func() {
		a.session.Cancel()
		a.engine.Unregister()
		cancel()
	}

	go func() {
		if err := a.session.Run(ctx, a.engine.Events()); err != nil && ctx.Err() == nil {
			slog.Error("session stopped", "error", err)
		}
	}()
	go func() {
		if err := config.Watch(ctx, a.cfgPath, a.applyConfig); err != nil {
			slog.Warn("config watcher stopped", "error", err)
		}
	}()

	a.tray.Run()

	a.typer.Close()
}

// saveConfig writes settings edited in the tray. The watcher picks the file
// up, but the change is applied directly so it does not wait for the event.
func (a *app) saveConfig(cfg *config.Config) {
	if err := cfg.SaveTo(a.cfgPath); err != nil {
		slog.Error("saving config failed", "path", a.cfgPath, "error", err)
		return
	}
	a.applyConfig(cfg)
}
