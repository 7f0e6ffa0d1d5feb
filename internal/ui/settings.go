package ui

import (
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Alijeyrad/gotalk-voicecode/internal/config"
	"github.com/Alijeyrad/gotalk-voicecode/internal/hotkey"
	"github.com/Alijeyrad/gotalk-voicecode/internal/keys"
)

// languages is the ordered list shown in the language dropdown.
var languages = []struct{ code, label string }{
	{"", "Auto-detect"},
	{"en", "English"},
	{"es", "Spanish"},
	{"fa", "Persian (Farsi)"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"ja", "Japanese"},
	{"zh", "Chinese"},
}

var (
	transcriptionProviders = []string{"groq", "openai", "google-cloud"}
	interpreterProviders   = []string{"groq", "openai", "anthropic"}
	modes                  = []string{string(hotkey.Toggle), string(hotkey.PushToTalk)}
)

// keyNames maps keys fyne reports to the names understood by the hotkey engine.
var keyNames = map[fyne.KeyName]string{
	desktop.KeyControlLeft:  "Control",
	desktop.KeyControlRight: "Control",
	desktop.KeyShiftLeft:    "Shift",
	desktop.KeyShiftRight:   "Shift",
	desktop.KeyAltLeft:      "Alt",
	desktop.KeyAltRight:     "Alt",
	desktop.KeySuperLeft:    "Meta",
	desktop.KeySuperRight:   "Meta",
	fyne.KeySpace:           "Space",
	fyne.KeyEscape:          "Escape",
	fyne.KeyTab:             "Tab",
	fyne.KeyReturn:          "Enter",
	fyne.KeyBackspace:       "Backspace",
}

// comboKey returns the engine name for a key pressed in the capture dialog.
func comboKey(k fyne.KeyName) (string, bool) {
	if n, ok := keyNames[k]; ok {
		return n, true
	}
	name := strings.ToLower(string(k))
	if _, ok := keys.Lookup(name); ok {
		return name, true
	}
	return "", false
}

// parseCombo splits "Control+Shift+Meta" into key names.
func parseCombo(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "+") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatCombo(names []string) string { return strings.Join(names, "+") }

// validCombo reports whether every key name in s is known.
func validCombo(s string) bool {
	return keys.Resolve(parseCombo(s)).Reachable()
}

// comboField is a button that records a key combination from the keyboard.
// The combination is complete when the first held key is released.
type comboField struct {
	win       fyne.Window
	btn       *widget.Button
	value     string
	capturing bool
	held      []string
	onChange  func()
}

func newComboField(win fyne.Window, value string, onChange func()) *comboField {
	f := &comboField{win: win, value: value, onChange: onChange}
	f.btn = widget.NewButtonWithIcon(value, theme.ComputerIcon(), f.toggle)
	return f
}

func (f *comboField) toggle() {
	dc, ok := f.win.Canvas().(desktop.Canvas)
	if !ok {
		return
	}
	if f.capturing {
		f.stop(dc)
		f.btn.SetText(f.value)
		return
	}
	f.capturing = true
	f.held = nil
	f.btn.SetText("Press key combination…")
	dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
		if n, ok := comboKey(ev.Name); ok && !slices.Contains(f.held, n) {
			f.held = append(f.held, n)
			f.btn.SetText(formatCombo(f.held))
		}
	})
	dc.SetOnKeyUp(func(*fyne.KeyEvent) {
		if len(f.held) == 0 {
			return
		}
		f.value = formatCombo(f.held)
		f.stop(dc)
		f.btn.SetText(f.value)
		f.onChange()
	})
}

func (f *comboField) stop(dc desktop.Canvas) {
	f.capturing = false
	dc.SetOnKeyDown(nil)
	dc.SetOnKeyUp(nil)
}

// showSettingsWindow opens the settings editor. onSave receives a copy of cfg
// with the edited values. Must be called on the fyne goroutine.
func showSettingsWindow(a fyne.App, cfg *config.Config, onSave func(*config.Config)) fyne.Window {
	w := a.NewWindow("GoTalk VoiceCode Settings")
	w.SetIcon(trayIcon)
	w.Resize(fyne.NewSize(520, 620))

	// baseline is what Save compares against; it moves forward on every save.
	baseline := *cfg

	var changed func()
	onChanged := func() {
		if changed != nil {
			changed()
		}
	}

	// ---- Hotkeys ----
	startField := newComboField(w, formatCombo(cfg.StartStop.Keys), onChanged)
	startMode := widget.NewSelect(modes, func(string) { onChanged() })
	startMode.SetSelected(string(cfg.StartStop.Mode))

	codeField := newComboField(w, formatCombo(cfg.CodeSnippet.Keys), onChanged)
	codeMode := widget.NewSelect(modes, func(string) { onChanged() })
	codeMode.SetSelected(string(cfg.CodeSnippet.Mode))

	cancelEntry := widget.NewEntry()
	cancelEntry.SetText(cfg.CancelKey)
	cancelEntry.OnChanged = func(string) { onChanged() }

	// ---- Language ----
	labels := make([]string, len(languages))
	for i, l := range languages {
		labels[i] = l.label
	}
	langSelect := widget.NewSelect(labels, func(string) { onChanged() })
	langSelect.SetSelected(languageLabel(cfg.Language))

	// ---- Providers ----
	trProvider := widget.NewSelect(transcriptionProviders, func(string) { onChanged() })
	trProvider.SetSelected(cfg.Transcription.Provider)
	trKey := widget.NewPasswordEntry()
	trKey.SetText(cfg.Transcription.APIKey)
	trKey.SetPlaceHolder("Leave blank to use the environment")
	trKey.OnChanged = func(string) { onChanged() }
	trModel := widget.NewEntry()
	trModel.SetText(cfg.Transcription.Model)
	trModel.SetPlaceHolder("provider default")
	trModel.OnChanged = func(string) { onChanged() }

	inProvider := widget.NewSelect(interpreterProviders, func(string) { onChanged() })
	inProvider.SetSelected(cfg.Interpreter.Provider)
	inKey := widget.NewPasswordEntry()
	inKey.SetText(cfg.Interpreter.APIKey)
	inKey.SetPlaceHolder("Leave blank to use the environment")
	inKey.OnChanged = func(string) { onChanged() }
	inModel := widget.NewEntry()
	inModel.SetText(cfg.Interpreter.Model)
	inModel.SetPlaceHolder("provider default")
	inModel.OnChanged = func(string) { onChanged() }

	// ---- Behaviour ----
	autoInsert := widget.NewCheck("Insert text automatically", func(bool) { onChanged() })
	autoInsert.SetChecked(cfg.AutoInsert)
	clipboard := widget.NewCheck("Paste through the clipboard", func(bool) { onChanged() })
	clipboard.SetChecked(cfg.UseClipboardInsertion)
	punct := widget.NewCheck("Replace spoken punctuation", func(bool) { onChanged() })
	punct.SetChecked(cfg.EnablePunctuation)

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(strconv.Itoa(cfg.Timeout))
	timeoutEntry.SetPlaceHolder("seconds (default 60)")
	timeoutEntry.OnChanged = func(string) { onChanged() }

	saveBtn := widget.NewButton("Save", nil)
	saveBtn.Importance = widget.HighImportance
	saveBtn.Disable()
	closeBtn := widget.NewButton("Close", nil)

	current := func() *config.Config {
		c := baseline
		c.StartStop = hotkey.Config{Keys: parseCombo(startField.value), Mode: hotkey.Mode(startMode.Selected)}
		c.CodeSnippet = hotkey.Config{Keys: parseCombo(codeField.value), Mode: hotkey.Mode(codeMode.Selected)}
		c.CancelKey = strings.TrimSpace(cancelEntry.Text)
		c.Language = languageCode(langSelect.Selected)
		c.Transcription = config.Provider{
			Provider: trProvider.Selected,
			APIKey:   trKey.Text,
			Model:    strings.TrimSpace(trModel.Text),
			BaseURL:  baseline.Transcription.BaseURL,
		}
		c.Interpreter = config.Provider{
			Provider: inProvider.Selected,
			APIKey:   inKey.Text,
			Model:    strings.TrimSpace(inModel.Text),
			BaseURL:  baseline.Interpreter.BaseURL,
		}
		c.AutoInsert = autoInsert.Checked
		c.UseClipboardInsertion = clipboard.Checked
		c.EnablePunctuation = punct.Checked
		if n, err := strconv.Atoi(timeoutEntry.Text); err == nil && n >= 5 {
			c.Timeout = n
		}
		return &c
	}

	valid := func() bool {
		_, ok := keys.Lookup(cancelEntry.Text)
		return ok && validCombo(startField.value) && validCombo(codeField.value)
	}

	hasChanges := func() bool {
		return !sameConfig(current(), &baseline)
	}

	changed = func() {
		if hasChanges() && valid() {
			saveBtn.Enable()
		} else {
			saveBtn.Disable()
		}
	}

	doSave := func() {
		c := current()
		onSave(c)
		baseline = *c
		saveBtn.Disable()
	}
	saveBtn.OnTapped = doSave

	tryClose := func() {
		if !hasChanges() || !valid() {
			w.Close()
			return
		}
		dialog.NewCustomConfirm("Unsaved changes", "Save", "Discard",
			widget.NewLabel("You have unsaved changes."),
			func(save bool) {
				if save {
					doSave()
				}
				w.Close()
			}, w).Show()
	}
	closeBtn.OnTapped = tryClose
	w.SetCloseIntercept(tryClose)

	bold := func(s string) *widget.Label {
		return widget.NewLabelWithStyle(s, fyne.TextAlignTrailing, fyne.TextStyle{Bold: true})
	}
	form := container.New(layout.NewFormLayout(),
		bold("Dictation"), container.NewBorder(nil, nil, nil, startMode, startField.btn),
		bold("Code snippet"), container.NewBorder(nil, nil, nil, codeMode, codeField.btn),
		bold("Cancel key"), cancelEntry,

		widget.NewSeparator(), widget.NewSeparator(),

		bold("Language"), langSelect,
		bold("Transcription"), trProvider,
		bold("API key"), trKey,
		bold("Model"), trModel,

		widget.NewSeparator(), widget.NewSeparator(),

		bold("Code generation"), inProvider,
		bold("API key"), inKey,
		bold("Model"), inModel,

		widget.NewSeparator(), widget.NewSeparator(),

		widget.NewLabel(""), autoInsert,
		widget.NewLabel(""), clipboard,
		widget.NewLabel(""), punct,
		bold("Max processing"), container.NewBorder(nil, nil, nil, widget.NewLabel("sec"), timeoutEntry),
	)

	buttons := container.NewHBox(layout.NewSpacer(), closeBtn, saveBtn)
	w.SetContent(container.NewBorder(nil, buttons, nil, nil, container.NewVScroll(form)))
	w.Show()
	return w
}

func languageLabel(code string) string {
	for _, l := range languages {
		if l.code == code {
			return l.label
		}
	}
	// Unknown code: show it raw.
	return code
}

func languageCode(label string) string {
	for _, l := range languages {
		if l.label == label {
			return l.code
		}
	}
	return label
}

func sameConfig(a, b *config.Config) bool {
	return slices.Equal(a.StartStop.Keys, b.StartStop.Keys) &&
		a.StartStop.Mode == b.StartStop.Mode &&
		slices.Equal(a.CodeSnippet.Keys, b.CodeSnippet.Keys) &&
		a.CodeSnippet.Mode == b.CodeSnippet.Mode &&
		a.CancelKey == b.CancelKey &&
		a.AutoInsert == b.AutoInsert &&
		a.UseClipboardInsertion == b.UseClipboardInsertion &&
		a.Language == b.Language &&
		a.Timeout == b.Timeout &&
		a.Transcription == b.Transcription &&
		a.Interpreter == b.Interpreter &&
		a.EnablePunctuation == b.EnablePunctuation
}
