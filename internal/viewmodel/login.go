package viewmodel

import (
	"context"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/session"
)

// LoggedInMsg carries the login result.
type LoggedInMsg struct {
	owner *LoginModel
	User  model.User
	Err   error
}

// LoginModel is the nickname form.
type LoginModel struct {
	Nickname   string
	Submitting bool
	Complete   bool
	Err        string

	sess    *session.Session
	service UserService
	store   SessionStore
}

// NewLoginModel builds the form. store may be nil, in which case the identity
// lasts only for the process.
func NewLoginModel(sess *session.Session, service UserService, store SessionStore) *LoginModel {
	return &LoginModel{sess: sess, service: service, store: store}
}

// IsButtonEnabled reports whether a nickname has been entered.
func (m *LoginModel) IsButtonEnabled() bool {
	return strings.TrimSpace(m.Nickname) != "" && !m.Submitting
}

// Submit logs in with the nickname. It does nothing when the nickname is empty.
func (m *LoginModel) Submit() tea.Cmd {
	nickname := strings.TrimSpace(m.Nickname)
	if nickname == "" {
		return nil
	}
	m.Submitting = true
	m.Err = ""
	return func() tea.Msg {
		user, err := m.service.Login(context.Background(), nickname)
		return LoggedInMsg{owner: m, User: user, Err: err}
	}
}

// Update applies the login result.
func (m *LoginModel) Update(msg tea.Msg) tea.Cmd {
	res, ok := msg.(LoggedInMsg)
	if !ok || res.owner != m {
		return nil
	}
	m.Submitting = false
	if res.Err != nil {
		slog.Error("failed to log in", "nickname", m.Nickname, "error", res.Err)
		m.Err = msgLoginFailed
		return nil
	}
	m.sess.Set(res.User)
	m.Complete = true
	if m.store == nil {
		return nil
	}
	sess := *m.sess
	return func() tea.Msg {
		if err := m.store.SaveSession(context.Background(), sess); err != nil {
			slog.Error("failed to persist session", "user_id", sess.UserID, "error", err)
		}
		return nil
	}
}

// Logout clears the identity and the form.
func (m *LoginModel) Logout() tea.Cmd {
	m.sess.Clear()
	m.Nickname = ""
	m.Complete = false
	m.Err = ""
	if m.store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := m.store.ClearSession(context.Background()); err != nil {
			slog.Error("failed to clear session", "error", err)
		}
		return nil
	}
}
