package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(MinWidth-1, MinHeight) {
		t.Error("expected too small below min width")
	}
	if !IsTooSmall(MinWidth, MinHeight-1) {
		t.Error("expected too small below min height")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("min size should be accepted")
	}
}

func TestTextWidth(t *testing.T) {
	if got := TextWidth(200); got != ContentMaxWidth {
		t.Errorf("TextWidth(200) = %d, want %d", got, ContentMaxWidth)
	}
	if got := TextWidth(70); got != 62 {
		t.Errorf("TextWidth(70) = %d, want 62", got)
	}
	if got := TextWidth(10); got != 20 {
		t.Errorf("TextWidth(10) = %d, want 20", got)
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Frage", "3/13", 80)
	if !strings.Contains(h, AppName) || !strings.Contains(h, "Frage") || !strings.Contains(h, "3/13") {
		t.Errorf("header missing parts:\n%s", h)
	}
}

func TestRenderFrame_FillsHeight(t *testing.T) {
	header := RenderHeader("T", "", 80)
	footer := RenderFooter([]KeyHint{{Key: "q", Description: "Beenden"}}, 80)
	frame := RenderFrame(header, "inhalt", footer, 80, 30)
	if got := lipgloss.Height(frame); got != 30 {
		t.Errorf("frame height = %d, want 30", got)
	}
	if ContentHeight(header, footer, 30) != 30-lipgloss.Height(header)-lipgloss.Height(footer) {
		t.Error("unexpected content height")
	}
}
