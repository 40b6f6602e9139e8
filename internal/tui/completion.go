package tui

import (
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/viewmodel"
)

func (m *Model) openCompletion(ch model.Challenge) tea.Cmd {
	m.completion = viewmodel.NewCompletionModel(m.deps.Session, ch, m.deps.History, m.challenges)
	m.assessment = ""
	m.retroInput.Reset()
	m.screen = screenCompletion
	return m.retroInput.Focus()
}

func (m *Model) closeCompletion() {
	m.retroInput.Blur()
	m.completion = nil
	m.challenges.Completing = nil
	m.screen = screenMain
}

func (m *Model) updateCompletion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.completion
	if c.ShowSuccess {
		if msg.Type != tea.KeyEnter && msg.Type != tea.KeyEsc {
			return m, nil
		}
		cmd := c.ConfirmSuccess()
		if c.ShouldDismiss {
			m.closeCompletion()
		}
		return m, tea.Batch(cmd, m.history.Refresh())
	}
	switch msg.Type {
	case tea.KeyEsc:
		if !c.Saving {
			m.closeCompletion()
		}
		return m, nil
	case tea.KeyCtrlS:
		if c.Saving {
			return m, nil
		}
		c.Retrospection = m.retroInput.Value()
		cmd, err := c.Submit()
		if err != nil {
			return m, nil
		}
		return m, cmd
	}
	var cmd tea.Cmd
	m.retroInput, cmd = m.retroInput.Update(msg)
	return m, cmd
}

func (m *Model) viewCompletion() string {
	c := m.completion
	width := contentWidth(m.width)
	if c.ShowSuccess {
		lines := []string{
			successStyle.Render("100% 완료!"),
			titleStyle.Render(truncateLine(c.Challenge.Title, width)),
			mutedStyle.Render(c.Record.DateRangeText()),
			"",
			accentStyle.Render("응원 메시지"),
			strings.TrimRight(m.assessment, "\n"),
			"",
			headerStyle.Render("확인: enter"),
		}
		return fitLines(strings.Join(lines, "\n"), m.width, m.height)
	}
	lines := []string{
		titleStyle.Render("회고하기"),
		"",
		accentStyle.Render("도전 제목"),
		truncateLine(c.Challenge.Title, width),
		accentStyle.Render("도전 내용"),
		truncateLine(c.Challenge.Description, width),
		"",
		accentStyle.Render("회고 작성"),
		m.retroInput.View(),
	}
	if c.Saving {
		lines = append(lines, m.loadingLine("회고를 저장하는 중..."))
	}
	if c.Err != "" {
		lines = append(lines, errorStyle.Render(c.Err))
	}
	lines = append(lines, "", headerStyle.Render("회고 저장하기: ctrl+s  취소: esc"))
	return fitLines(strings.Join(lines, "\n"), m.width, m.height)
}

// renderMarkdown renders assessment text, falling back to the raw text.
func renderMarkdown(md string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(maxInt(20, width)),
	)
	if err != nil {
		slog.Warn("failed to create markdown renderer", "error", err)
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		slog.Warn("failed to render markdown", "error", err)
		return md
	}
	return out
}
