package codegen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

type fakeCompleter struct {
	configured bool
	reply      string
	err        error
	system     string
	user       string
	calls      int
}

func (f *fakeCompleter) Name() string     { return "fake" }
func (f *fakeCompleter) Configured() bool { return f.configured }

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.reply, f.err
}

func TestDetect(t *testing.T) {
	tests := []struct {
		in       string
		wantLang Language
		wantBody string
	}{
		{"command list files", Bash, "list files"},
		{"javascript create a function", JavaScript, "create a function"},
		{"TypeScript interface user", TypeScript, "interface user"},
		{"Python, print hello world.", Python, "print hello world."},
		{"translate hello world to French", Translate, "hello world to French"},
		{"  create a constant x equals one  ", JavaScript, "create a constant x equals one"},
		{"pythonic code please", JavaScript, "pythonic code please"},
		{"commander keen", JavaScript, "commander keen"},
		{"python", Python, ""},
		{"", JavaScript, ""},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			lang, body := Detect(tc.in)
			if lang != tc.wantLang || body != tc.wantBody {
				t.Errorf("Detect(%q) = (%q, %q), want (%q, %q)", tc.in, lang, body, tc.wantLang, tc.wantBody)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "const x = 1;", "const x = 1;"},
		{"fenced with info", "```python\nprint('hi')\n```", "print('hi')"},
		{"fenced no info", "```\nls -la\n```\n", "ls -la"},
		{"whitespace", "  \n```js\na()\nb()\n```  ", "a()\nb()"},
		{"unterminated", "```go\nfunc f() {}", "func f() {}"},
		{"only fence", "```", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestInterpretCodeRoutesPrompt(t *testing.T) {
	f := &fakeCompleter{configured: true, reply: "```bash\nls -la\n```"}
	it := NewInterpreter(f)

	code, err := it.InterpretCode(context.Background(), "command list files")
	if err != nil {
		t.Fatalf("InterpretCode() error: %v", err)
	}
	if code != "ls -la" {
		t.Errorf("code = %q, want %q", code, "ls -la")
	}
	if f.user != "list files" {
		t.Errorf("user message = %q, want keyword stripped", f.user)
	}
	if f.system != prompts[Bash] {
		t.Error("bash prompt not used")
	}
}

func TestInterpretCodeDefaultsToJavaScript(t *testing.T) {
	f := &fakeCompleter{configured: true, reply: "const showProgress = !isLoading;"}
	if _, err := NewInterpreter(f).InterpretCode(context.Background(), "show progress is not loading"); err != nil {
		t.Fatal(err)
	}
	if f.system != prompts[JavaScript] {
		t.Error("javascript prompt not used")
	}
}

func TestInterpretCodeEmpty(t *testing.T) {
	f := &fakeCompleter{configured: true}
	code, err := NewInterpreter(f).InterpretCode(context.Background(), "python   ")
	if err != nil || code != "" {
		t.Errorf("InterpretCode() = %q, %v; want empty", code, err)
	}
	if f.calls != 0 {
		t.Error("completer called for empty body")
	}
}

func TestInterpretCodeBlankReplyKeepsText(t *testing.T) {
	f := &fakeCompleter{configured: true, reply: "  "}
	code, err := NewInterpreter(f).InterpretCode(context.Background(), "it is sunny")
	if err != nil {
		t.Fatal(err)
	}
	if code != "it is sunny" {
		t.Errorf("code = %q, want input back", code)
	}
}

func TestInterpretCodeErrors(t *testing.T) {
	it := NewInterpreter(&fakeCompleter{})
	if it.IsConfigured() {
		t.Error("IsConfigured() = true")
	}
	if _, err := it.InterpretCode(context.Background(), "x"); !errors.Is(err, session.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}

	boom := errors.New("boom")
	_, err := NewInterpreter(&fakeCompleter{configured: true, err: boom}).InterpretCode(context.Background(), "x")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestNew(t *testing.T) {
	for _, p := range []string{"", "groq", "openai", "anthropic"} {
		it, err := New(p, Options{APIKey: "k"})
		if err != nil {
			t.Errorf("New(%q) error: %v", p, err)
			continue
		}
		if !it.IsConfigured() {
			t.Errorf("New(%q) not configured with key", p)
		}
	}
	if _, err := New("zai", Options{}); err == nil {
		t.Error("New(zai) should fail")
	}
}

func TestOpenAICompleter(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"print('hi')"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewGroqCompleter(Options{APIKey: "gsk", BaseURL: srv.URL + "/openai/v1"})
	out, err := c.Complete(context.Background(), "sys", "say hi")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if out != "print('hi')" {
		t.Errorf("out = %q", out)
	}
	if got.Model != defaultGroqModel {
		t.Errorf("model = %q, want %q", got.Model, defaultGroqModel)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "say hi" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestAnthropicCompleter(t *testing.T) {
	var got struct {
		Model  string `json:"model"`
		System []struct {
			Text string `json:"text"`
		} `json:"system"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "ant" {
			t.Errorf("x-api-key = %q", r.Header.Get("X-Api-Key"))
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-20250514",
			"content":[{"type":"text","text":"const a = 1;"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":3,"output_tokens":4}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewAnthropicCompleter(Options{APIKey: "ant", BaseURL: srv.URL})
	out, err := c.Complete(context.Background(), "sys prompt", "a is one")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if out != "const a = 1;" {
		t.Errorf("out = %q", out)
	}
	if got.Model != defaultClaudeModel {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.System) != 1 || got.System[0].Text != "sys prompt" {
		t.Errorf("system = %+v", got.System)
	}
}
