package viewmodel

import (
	"log/slog"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/challenger/internal/model"
)

// SharedMsg reports the end of a clipboard copy.
type SharedMsg struct {
	owner *LastChallengeModel
	Err   error
}

// LastChallengeModel is the read-only detail of a completed challenge.
type LastChallengeModel struct {
	Record model.LastChallenge
	Notice string

	writeClipboard func(string) error
}

// NewLastChallengeModel wraps a completed record.
func NewLastChallengeModel(record model.LastChallenge) *LastChallengeModel {
	return &LastChallengeModel{Record: record, writeClipboard: clipboard.WriteAll}
}

// DateRangeText returns the duration and date range line.
func (m *LastChallengeModel) DateRangeText() string {
	return m.Record.DateRangeText()
}

// ShareMessage returns the text placed on the clipboard by Share.
func (m *LastChallengeModel) ShareMessage() string {
	return m.Record.ShareMessage()
}

// Share copies the share message to the system clipboard.
func (m *LastChallengeModel) Share() tea.Cmd {
	text := m.ShareMessage()
	write := m.writeClipboard
	return func() tea.Msg {
		return SharedMsg{owner: m, Err: write(text)}
	}
}

// Update applies the copy result.
func (m *LastChallengeModel) Update(msg tea.Msg) tea.Cmd {
	shared, ok := msg.(SharedMsg)
	if !ok || shared.owner != m {
		return nil
	}
	if shared.Err != nil {
		slog.Warn("failed to copy share message", "id", m.Record.ID, "error", shared.Err)
		m.Notice = msgShareFailed
		return nil
	}
	m.Notice = msgShared
	return nil
}
