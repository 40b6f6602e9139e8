package viewmodel

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/session"
)

// HistoryLoadedMsg carries the result of a history fetch.
type HistoryLoadedMsg struct {
	owner   *HistoryModel
	Records []model.LastChallenge
	Err     error
}

// HistoryCachedMsg carries the cached history shown while a fetch is in flight.
type HistoryCachedMsg struct {
	owner   *HistoryModel
	Records []model.LastChallenge
}

// HistoryModel is the completed challenge list.
type HistoryModel struct {
	LastChallenges []model.LastChallenge
	Loading        bool
	Err            string

	sess    *session.Session
	service LastChallengeService
	cache   HistoryCache
}

// NewHistoryModel builds the history list. cache may be nil.
func NewHistoryModel(sess *session.Session, service LastChallengeService, cache HistoryCache) *HistoryModel {
	return &HistoryModel{sess: sess, service: service, cache: cache}
}

// Refresh starts a fetch of the history.
func (m *HistoryModel) Refresh() tea.Cmd {
	if !m.sess.LoggedIn() {
		m.Err = msgNotLoggedIn
		return nil
	}
	m.Loading = true
	m.Err = ""
	userID := m.sess.UserID
	fetch := func() tea.Msg {
		records, err := m.service.List(context.Background(), userID)
		if err == nil && m.cache != nil {
			if cerr := m.cache.SaveLastChallenges(context.Background(), userID, records); cerr != nil {
				slog.Warn("failed to cache history", "user_id", userID, "error", cerr)
			}
		}
		return HistoryLoadedMsg{owner: m, Records: records, Err: err}
	}
	if m.cache == nil {
		return fetch
	}
	cached := func() tea.Msg {
		records, err := m.cache.LoadLastChallenges(context.Background(), userID)
		if err != nil {
			slog.Warn("failed to read cached history", "user_id", userID, "error", err)
			return nil
		}
		return HistoryCachedMsg{owner: m, Records: records}
	}
	return tea.Batch(cached, fetch)
}

// Find returns the record with id.
func (m *HistoryModel) Find(id int64) (model.LastChallenge, bool) {
	for _, r := range m.LastChallenges {
		if r.ID == id {
			return r, true
		}
	}
	return model.LastChallenge{}, false
}

// Remove drops a record from the local snapshot and the cache.
func (m *HistoryModel) Remove(id int64) tea.Cmd {
	kept := make([]model.LastChallenge, 0, len(m.LastChallenges))
	for _, r := range m.LastChallenges {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.LastChallenges = kept
	if m.cache == nil || !m.sess.LoggedIn() {
		return nil
	}
	userID := m.sess.UserID
	return func() tea.Msg {
		if err := m.cache.RemoveLastChallenge(context.Background(), userID, id); err != nil {
			slog.Warn("failed to remove cached record", "id", id, "error", err)
		}
		return nil
	}
}

// Update applies results.
func (m *HistoryModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case HistoryCachedMsg:
		if msg.owner != m || !m.Loading {
			return nil
		}
		m.LastChallenges = msg.Records
	case HistoryLoadedMsg:
		if msg.owner != m {
			return nil
		}
		m.Loading = false
		if msg.Err != nil {
			slog.Error("failed to load history", "error", msg.Err)
			m.Err = ErrorMessage(msg.Err)
			return nil
		}
		m.LastChallenges = msg.Records
	}
	return nil
}
