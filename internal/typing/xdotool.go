package typing

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// xdotool drives input through the xdotool and xclip commands.
type xdotool struct{}

func (xdotool) typeString(text string) error {
	return exec.Command("xdotool", "type", "--clearmodifiers", "--delay", "0", "--", text).Run()
}

func (xdotool) paste(text string) error {
	if err := (xdotool{}).writeClipboard(text); err != nil {
		return err
	}
	return exec.Command("xdotool", "key", "--clearmodifiers", "ctrl+v").Run()
}

func (xdotool) selectAll() error {
	return exec.Command("xdotool", "key", "--clearmodifiers", "ctrl+a").Run()
}

func (xdotool) backspace(n int) error {
	return exec.Command("xdotool", backspaceArgs(n)...).Run()
}

func (xdotool) readClipboard() (string, bool) {
	out, err := exec.Command("xclip", "-selection", "clipboard", "-o").Output()
	if err != nil || len(out) == 0 {
		return "", false
	}
	return string(out), true
}

func (xdotool) writeClipboard(text string) error {
	cmd := exec.Command("xclip", "-selection", "clipboard")
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("xclip: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (xdotool) close() {}

func backspaceArgs(n int) []string {
	args := []string{"key", "--clearmodifiers", "--delay", "0"}
	for range n {
		args = append(args, "BackSpace")
	}
	return args
}
