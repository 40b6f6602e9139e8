package viewmodel

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/session"
)

// ChallengeCreatedMsg reports the end of a create request. The server id is not
// used; the active list is refreshed instead.
type ChallengeCreatedMsg struct {
	Draft model.Challenge
	Err   error
}

// NewChallengeModel is the new challenge form.
type NewChallengeModel struct {
	Title       string
	Description string
	// Period is the raw day count as typed.
	Period    string
	StartDate time.Time

	ShouldDismiss bool

	sess    *session.Session
	service ChallengeService
}

// NewNewChallengeModel builds an empty form starting today.
func NewNewChallengeModel(sess *session.Session, service ChallengeService, now time.Time) *NewChallengeModel {
	return &NewChallengeModel{sess: sess, service: service, StartDate: now}
}

// PeriodDays parses Period. ok is false unless it is an integer greater than zero.
func (m *NewChallengeModel) PeriodDays() (int, bool) {
	days, err := strconv.Atoi(strings.TrimSpace(m.Period))
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}

// IsFormValid reports whether Submit would issue a request.
func (m *NewChallengeModel) IsFormValid() bool {
	if strings.TrimSpace(m.Title) == "" || strings.TrimSpace(m.Description) == "" {
		return false
	}
	_, ok := m.PeriodDays()
	return ok
}

// FormattedDate renders the start date the way the form shows it.
func (m *NewChallengeModel) FormattedDate() string {
	return m.StartDate.Format("2006년 01월 02일")
}

// Submit validates the form and returns the create request.
func (m *NewChallengeModel) Submit() (tea.Cmd, error) {
	if !m.IsFormValid() {
		return nil, ErrInvalidForm
	}
	if !m.sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	days, _ := m.PeriodDays()
	draft := model.NewDraft(strings.TrimSpace(m.Title), strings.TrimSpace(m.Description), days)
	userID := m.sess.UserID

	m.Reset()
	m.ShouldDismiss = true

	return func() tea.Msg {
		_, err := m.service.Create(context.Background(), userID, draft.Title, draft.Description, draft.Duration)
		return ChallengeCreatedMsg{Draft: draft, Err: err}
	}, nil
}

// Reset clears the form fields.
func (m *NewChallengeModel) Reset() {
	m.Title = ""
	m.Description = ""
	m.Period = ""
}
