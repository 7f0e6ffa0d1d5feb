package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Alijeyrad/gotalk-voicecode/internal/config"
	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

const (
	appID          = "com.alijeyrad.GoTalkVoiceCode"
	autoHideDelay  = 3 * time.Second
	connectTimeout = 15 * time.Second
)

var trayIcon fyne.Resource = theme.MediaRecordIcon()

// Controls is the part of the orchestrator the tray drives.
type Controls interface {
	Toggle()
	Cancel()
	TestConnection(ctx context.Context) bool
	ClearHistory()
	History() []session.Transcription
}

// Tray is the system tray menu plus the recording indicator. It is fed
// session events through Observe.
type Tray struct {
	Controls       Controls
	OnUndo         func() error
	OnSettingsSave func(*config.Config)
	OnQuit         func()

	fyneApp    fyne.App
	indicator  *Indicator
	toggleItem *fyne.MenuItem
	menu       *fyne.Menu

	// Windows are only touched on the fyne goroutine.
	settingsWin fyne.Window
	historyWin  fyne.Window
	historyList *widget.List
	history     []session.Transcription

	mu    sync.Mutex
	state indicatorState
	// gen is bumped on every view change. A pending auto-hide only fires
	// if the generation it captured is still current.
	gen atomic.Uint64

	cfgMu sync.RWMutex
	cfg   *config.Config
}

// NewTray creates the fyne application and the indicator. Controls must be
// set before Run and before events are observed.
func NewTray(cfg *config.Config) *Tray {
	t := &Tray{cfg: cfg, fyneApp: app.NewWithID(appID)}
	if ind, err := NewIndicator(); err == nil {
		t.indicator = ind
	} else {
		slog.Warn("recording indicator unavailable", "error", err)
	}
	return t
}

// Run blocks running the fyne event loop until Quit is chosen.
func (t *Tray) Run() {
	a := t.fyneApp
	t.toggleItem = fyne.NewMenuItem("Start Recording", t.Controls.Toggle)
	t.menu = fyne.NewMenu("GoTalk",
		t.toggleItem,
		fyne.NewMenuItem("Cancel Recording", t.Controls.Cancel),
		fyne.NewMenuItem("Undo Last Insert", t.undo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("History…", t.openHistory),
		fyne.NewMenuItem("Clear History", t.Controls.ClearHistory),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Test Connection", t.testConnection),
		fyne.NewMenuItem("Settings…", t.openSettings),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if t.OnQuit != nil {
				t.OnQuit()
			}
			if t.indicator != nil {
				t.indicator.Close()
			}
			a.Quit()
		}),
	)
	if desk, ok := a.(desktop.App); ok {
		desk.SetSystemTrayMenu(t.menu)
		desk.SetSystemTrayIcon(trayIcon)
	}

	a.Run()
}

// UpdateConfig replaces the config shown in the settings window.
func (t *Tray) UpdateConfig(cfg *config.Config) {
	t.cfgMu.Lock()
	t.cfg = cfg
	t.cfgMu.Unlock()
}

// Observe updates the tray for a session event. Safe for concurrent use.
func (t *Tray) Observe(ev session.Event) {
	switch ev.(type) {
	case session.TranscriptionCompleted, session.HistoryCleared:
		t.refreshHistory()
	}

	t.mu.Lock()
	v, ok := present(t.state, ev)
	if !ok {
		t.mu.Unlock()
		return
	}
	t.state = v.state
	gen := t.gen.Add(1)
	t.mu.Unlock()

	t.show(v)
	if v.notify != "" {
		t.notify("GoTalk VoiceCode", v.notify)
	}
	if v.autoHide {
		time.AfterFunc(autoHideDelay, func() {
			t.mu.Lock()
			stale := t.gen.Load() != gen
			if !stale {
				t.state = indHidden
			}
			t.mu.Unlock()
			if !stale {
				t.show(view{state: indHidden})
			}
		})
	}
}

func (t *Tray) show(v view) {
	if t.indicator != nil {
		t.indicator.Apply(v.state, v.preview)
	}
	label, icon := "Start Recording", trayIcon
	switch v.state {
	case indRecording, indCode:
		label, icon = "Stop Recording", theme.MediaStopIcon()
	case indProcessing:
		icon = theme.ViewRefreshIcon()
	case indError:
		icon = theme.ErrorIcon()
	}
	fyne.Do(func() {
		desk, ok := t.fyneApp.(desktop.App)
		if !ok || t.toggleItem == nil {
			return
		}
		desk.SetSystemTrayIcon(icon)
		if t.toggleItem.Label != label {
			t.toggleItem.Label = label
			t.menu.Refresh()
		}
	})
}

func (t *Tray) notify(title, body string) {
	t.fyneApp.SendNotification(fyne.NewNotification(title, body))
}

func (t *Tray) undo() {
	if t.OnUndo == nil {
		return
	}
	if err := t.OnUndo(); err != nil {
		slog.Warn("undo failed", "error", err)
		t.notify("Undo failed", err.Error())
	}
}

func (t *Tray) testConnection() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if t.Controls.TestConnection(ctx) {
			t.notify("Connection OK", "The transcription provider is reachable.")
			return
		}
		t.notify("Connection failed", "Check the API key and network, then try again.")
	}()
}

func (t *Tray) openSettings() {
	if t.OnSettingsSave == nil {
		return
	}
	if t.settingsWin != nil {
		t.settingsWin.Show()
		t.settingsWin.RequestFocus()
		return
	}
	t.cfgMu.RLock()
	current := t.cfg
	t.cfgMu.RUnlock()
	win := showSettingsWindow(t.fyneApp, current, t.OnSettingsSave)
	t.settingsWin = win
	win.SetOnClosed(func() { t.settingsWin = nil })
}

func (t *Tray) openHistory() {
	if t.historyWin != nil {
		t.historyWin.Show()
		t.historyWin.RequestFocus()
		return
	}
	w := t.fyneApp.NewWindow("GoTalk VoiceCode History")
	w.SetIcon(trayIcon)
	w.Resize(fyne.NewSize(520, 420))

	t.history = t.Controls.History()
	list := widget.NewList(
		func() int { return len(t.history) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Italic: true}),
				widget.NewLabel(""),
			)
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(t.history) {
				return
			}
			item := t.history[id]
			box := o.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(historyCaption(item))
			text := box.Objects[1].(*widget.Label)
			text.Wrapping = fyne.TextWrapWord
			text.SetText(item.Text)
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		if id < len(t.history) {
			t.fyneApp.Clipboard().SetContent(t.history[id].Text)
			t.notify("Copied", "Transcription copied to the clipboard.")
		}
		list.UnselectAll()
	}
	t.historyList = list

	hint := widget.NewLabel("Select an entry to copy it.")
	w.SetContent(container.NewBorder(hint, nil, nil, nil, list))
	w.SetOnClosed(func() {
		t.historyWin = nil
		t.historyList = nil
	})
	t.historyWin = w
	w.Show()
}

func (t *Tray) refreshHistory() {
	items := t.Controls.History()
	fyne.Do(func() {
		if t.historyList == nil {
			return
		}
		t.history = items
		t.historyList.Refresh()
	})
}

func historyCaption(tr session.Transcription) string {
	s := tr.Timestamp.Local().Format("Jan 2 15:04:05")
	if tr.Language != "" {
		s += " · " + tr.Language
	}
	return s + fmt.Sprintf(" · %.1fs · %.0f%%", tr.Duration, tr.Confidence*100)
}
