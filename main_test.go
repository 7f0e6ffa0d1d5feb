package main

import (
	"testing"

	"github.com/Alijeyrad/gotalk-voicecode/internal/config"
	"github.com/Alijeyrad/gotalk-voicecode/internal/hotkey"
)

func TestBindingsChanged(t *testing.T) {
	base := config.Default()
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   bool
	}{
		{"unchanged", func(*config.Config) {}, false},
		{"language only", func(c *config.Config) { c.Language = "fr" }, false},
		{"start keys", func(c *config.Config) { c.StartStop.Keys = []string{"Alt", "Space"} }, true},
		{"start mode", func(c *config.Config) { c.StartStop.Mode = hotkey.PushToTalk }, true},
		{"snippet keys", func(c *config.Config) { c.CodeSnippet.Keys = []string{"Control", "Alt"} }, true},
		{"cancel key", func(c *config.Config) { c.CancelKey = "F1" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cur := config.Default()
			tc.mutate(cur)
			if got := bindingsChanged(base, cur); got != tc.want {
				t.Errorf("bindingsChanged = %v, want %v", got, tc.want)
			}
		})
	}
	if !bindingsChanged(nil, base) {
		t.Error("nil previous config should count as changed")
	}
}

func TestBuildProviders(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	cfg := config.Default()
	tr, in := buildProviders(cfg)
	if tr == nil || !tr.IsConfigured() {
		t.Fatalf("groq transcriber should be configured from the environment")
	}
	if in == nil || !in.IsConfigured() {
		t.Fatalf("groq interpreter should be configured from the environment")
	}

	cfg.Transcription.Provider = "nope"
	cfg.Interpreter.Provider = "nope"
	tr, in = buildProviders(cfg)
	if tr != nil || in != nil {
		t.Errorf("unknown providers should yield nil, got %v, %v", tr, in)
	}
}

func TestSessionSettings(t *testing.T) {
	cfg := config.Default()
	cfg.AutoInsert = false
	cfg.Language = "de"
	s := sessionSettings(cfg)
	if s.AutoInsert || s.Language != "de" {
		t.Errorf("sessionSettings = %+v", s)
	}
	o := typerOptions(cfg)
	if !o.EnablePunctuation || !o.UseClipboard {
		t.Errorf("typerOptions = %+v", o)
	}
}
