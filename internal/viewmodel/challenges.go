package viewmodel

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/session"
)

// ChallengesLoadedMsg carries the result of an active list fetch.
type ChallengesLoadedMsg struct {
	owner      *ChallengesModel
	Challenges []model.Challenge
	Err        error
}

// ChallengesCachedMsg carries the cached snapshot shown while a fetch is in flight.
type ChallengesCachedMsg struct {
	owner      *ChallengesModel
	Challenges []model.Challenge
}

// ChallengeDeletedMsg reports the end of a pause (delete) request.
type ChallengeDeletedMsg struct {
	owner *ChallengesModel
	ID    int64
	Err   error
}

// ChallengesModel is the active challenge list.
type ChallengesModel struct {
	Challenges []model.Challenge
	Loading    bool
	Err        string
	// Notice is a transient message for background actions that failed.
	Notice string

	// Pending is the challenge waiting for pause confirmation.
	Pending *model.Challenge
	// Completing is the challenge the user chose to reflect on.
	Completing *model.Challenge

	sess    *session.Session
	service ChallengeService
	cache   ChallengeCache
}

// NewChallengesModel builds the active list. cache may be nil.
func NewChallengesModel(sess *session.Session, service ChallengeService, cache ChallengeCache) *ChallengesModel {
	return &ChallengesModel{sess: sess, service: service, cache: cache}
}

// Refresh starts a fetch of the active list.
func (m *ChallengesModel) Refresh() tea.Cmd {
	if !m.sess.LoggedIn() {
		m.Err = msgNotLoggedIn
		return nil
	}
	m.Loading = true
	m.Err = ""
	userID := m.sess.UserID
	fetch := func() tea.Msg {
		challenges, err := m.service.List(context.Background(), userID)
		if err == nil && m.cache != nil {
			if cerr := m.cache.SaveChallenges(context.Background(), userID, challenges); cerr != nil {
				slog.Warn("failed to cache challenges", "user_id", userID, "error", cerr)
			}
		}
		return ChallengesLoadedMsg{owner: m, Challenges: challenges, Err: err}
	}
	if m.cache == nil {
		return fetch
	}
	cached := func() tea.Msg {
		challenges, err := m.cache.LoadChallenges(context.Background(), userID)
		if err != nil {
			slog.Warn("failed to read cached challenges", "user_id", userID, "error", err)
			return nil
		}
		return ChallengesCachedMsg{owner: m, Challenges: challenges}
	}
	return tea.Batch(cached, fetch)
}

// RequestPause stages a challenge for pause confirmation.
func (m *ChallengesModel) RequestPause(ch model.Challenge) {
	m.Pending = &ch
}

// CancelPause discards the staged challenge.
func (m *ChallengesModel) CancelPause() {
	m.Pending = nil
}

// ConfirmPause deletes the staged challenge and then refreshes the list.
func (m *ChallengesModel) ConfirmPause() tea.Cmd {
	if m.Pending == nil {
		return nil
	}
	id := m.Pending.ID
	m.Pending = nil
	m.Notice = ""
	return func() tea.Msg {
		return ChallengeDeletedMsg{owner: m, ID: id, Err: m.service.Delete(context.Background(), id)}
	}
}

// SelectForCompletion stages the challenge with id for the completion screen.
func (m *ChallengesModel) SelectForCompletion(id int64) bool {
	for i := range m.Challenges {
		if m.Challenges[i].ID == id {
			ch := m.Challenges[i]
			m.Completing = &ch
			return true
		}
	}
	return false
}

// DismissNotice clears the transient notice.
func (m *ChallengesModel) DismissNotice() {
	m.Notice = ""
}

// Update applies results. It also reconciles after a challenge was created elsewhere.
func (m *ChallengesModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ChallengesCachedMsg:
		if msg.owner != m || !m.Loading {
			return nil
		}
		m.Challenges = msg.Challenges
	case ChallengesLoadedMsg:
		if msg.owner != m {
			return nil
		}
		m.Loading = false
		if msg.Err != nil {
			slog.Error("failed to load challenges", "error", msg.Err)
			m.Err = ErrorMessage(msg.Err)
			return nil
		}
		m.Challenges = msg.Challenges
	case ChallengeDeletedMsg:
		if msg.owner != m {
			return nil
		}
		if msg.Err != nil {
			slog.Error("failed to delete challenge", "challenge_id", msg.ID, "error", msg.Err)
			m.Notice = msgDeleteFailed
		}
		return m.Refresh()
	case ChallengeCreatedMsg:
		if msg.Err != nil {
			slog.Error("failed to create challenge", "title", msg.Draft.Title, "error", msg.Err)
			m.Notice = msgCreateFailed
		}
		return m.Refresh()
	}
	return nil
}
