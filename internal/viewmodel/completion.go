package viewmodel

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/session"
)

// RetrospectionSavedMsg carries the completed record or the failure.
type RetrospectionSavedMsg struct {
	owner  *CompletionModel
	Record model.LastChallenge
	Err    error
}

// CompletionModel is the retrospection form for one challenge.
type CompletionModel struct {
	Challenge     model.Challenge
	Retrospection string
	Saving        bool
	Err           string

	// Assessment and Record are set once the server accepted the retrospection.
	Assessment  string
	Record      model.LastChallenge
	ShowSuccess bool

	ShouldDismiss bool

	sess    *session.Session
	service LastChallengeService
	active  Refresher
	now     func() time.Time
}

// NewCompletionModel builds the form. active is refreshed when the user leaves the success screen.
func NewCompletionModel(sess *session.Session, ch model.Challenge, service LastChallengeService, active Refresher) *CompletionModel {
	return &CompletionModel{Challenge: ch, sess: sess, service: service, active: active, now: time.Now}
}

// Submit saves the retrospection. Empty text fails without a request.
func (m *CompletionModel) Submit() (tea.Cmd, error) {
	text := strings.TrimSpace(m.Retrospection)
	if text == "" {
		m.Err = msgEmptyRetrospection
		return nil, ErrEmptyRetrospection
	}
	if m.Challenge.IsDraft() {
		m.Err = msgUnsavedChallenge
		return nil, ErrUnsavedChallenge
	}
	if !m.sess.LoggedIn() {
		m.Err = msgNotLoggedIn
		return nil, ErrNotLoggedIn
	}
	m.Saving = true
	m.Err = ""
	userID, challengeID := m.sess.UserID, m.Challenge.ID
	return func() tea.Msg {
		record, err := m.service.Create(context.Background(), userID, challengeID, text)
		return RetrospectionSavedMsg{owner: m, Record: record, Err: err}
	}, nil
}

// ConfirmSuccess leaves the success screen and refreshes the active list.
func (m *CompletionModel) ConfirmSuccess() tea.Cmd {
	if !m.ShowSuccess {
		return nil
	}
	m.ShouldDismiss = true
	if m.active == nil {
		return nil
	}
	return m.active.Refresh()
}

// Update applies the save result.
func (m *CompletionModel) Update(msg tea.Msg) tea.Cmd {
	saved, ok := msg.(RetrospectionSavedMsg)
	if !ok || saved.owner != m {
		return nil
	}
	m.Saving = false
	if saved.Err != nil {
		slog.Error("failed to save retrospection", "challenge_id", m.Challenge.ID, "error", saved.Err)
		m.Err = msgSaveFailed
		return nil
	}
	record := saved.Record
	// Without a span from the server, the dates come from the challenge itself.
	if !record.EndDate.After(record.StartDate) {
		fallback := model.LastChallengeFromChallenge(m.Challenge, strings.TrimSpace(m.Retrospection), record.Assessment, m.now())
		if record.ID != 0 {
			fallback.ID = record.ID
		}
		record = fallback
	}
	m.Record = record
	m.Assessment = record.Assessment
	if m.Assessment == "" {
		m.Assessment = model.DefaultAssessment
	}
	m.ShowSuccess = true
	return nil
}
