package markdown

import (
	"strings"
	"testing"
)

func TestRenderEmptyInput(t *testing.T) {
	if got := Render(80, ""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := Render(80, "   \n\n"); got != "" {
		t.Fatalf("expected empty output for whitespace, got %q", got)
	}
}

func TestRenderPlainText(t *testing.T) {
	got := Render(80, "hello world")
	if !strings.Contains(got, "hello world") {
		t.Fatalf("expected rendered text to contain input, got %q", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatal("expected trailing newlines trimmed")
	}
}

func TestRenderNormalizesNewlines(t *testing.T) {
	got := Render(80, "a\r\nb\rc")
	if strings.Contains(got, "\r") {
		t.Fatalf("expected carriage returns removed, got %q", got)
	}
}
