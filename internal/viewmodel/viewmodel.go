// Package viewmodel holds per-screen state for the challenge client.
//
// Every exported method and Update must be called from the Bubble Tea loop.
// Network work is returned as a tea.Cmd and its result comes back as a message;
// a message whose owner is no longer on screen is ignored.
package viewmodel

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/challenger/internal/api"
	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/session"
)

var (
	// ErrInvalidForm is returned when a new challenge form fails validation.
	ErrInvalidForm = errors.New("title, description and a positive period are required")
	// ErrEmptyRetrospection is returned when a completion is submitted without text.
	ErrEmptyRetrospection = errors.New("retrospection is empty")
	// ErrNotLoggedIn is returned when an action needs a session that does not exist.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrUnsavedChallenge is returned when completing a challenge the server has not stored yet.
	ErrUnsavedChallenge = errors.New("challenge has not been saved yet")
)

// User-facing messages.
const (
	msgEmptyRetrospection = "회고 내용을 입력해주세요"
	msgSaveFailed         = "회고를 저장하지 못했습니다. 다시 시도해주세요"
	msgLoginFailed        = "로그인에 실패했습니다"
	msgNotLoggedIn        = "로그인이 필요합니다"
	msgDeleteFailed       = "도전을 포기하지 못했습니다"
	msgCreateFailed       = "도전을 만들지 못했습니다"
	msgShared             = "공유 메시지를 클립보드에 복사했습니다"
	msgShareFailed        = "클립보드에 복사하지 못했습니다"
	msgUnsavedChallenge   = "아직 저장되지 않은 도전입니다. 목록을 새로고침해주세요"
)

// ChallengeService manages active challenges.
type ChallengeService interface {
	Create(ctx context.Context, userID int64, title, description string, duration int) (int64, error)
	List(ctx context.Context, userID int64) ([]model.Challenge, error)
	Delete(ctx context.Context, challengeID int64) error
}

// LastChallengeService manages completed challenges.
type LastChallengeService interface {
	Create(ctx context.Context, userID, challengeID int64, retrospection string) (model.LastChallenge, error)
	List(ctx context.Context, userID int64) ([]model.LastChallenge, error)
}

// UserService logs users in.
type UserService interface {
	Login(ctx context.Context, username string) (model.User, error)
}

// SessionStore persists the identity across runs.
type SessionStore interface {
	SaveSession(ctx context.Context, sess session.Session) error
	ClearSession(ctx context.Context) error
}

// ChallengeCache keeps the last fetched active list per user.
type ChallengeCache interface {
	SaveChallenges(ctx context.Context, userID int64, challenges []model.Challenge) error
	LoadChallenges(ctx context.Context, userID int64) ([]model.Challenge, error)
}

// HistoryCache keeps the last fetched history per user.
type HistoryCache interface {
	SaveLastChallenges(ctx context.Context, userID int64, records []model.LastChallenge) error
	LoadLastChallenges(ctx context.Context, userID int64) ([]model.LastChallenge, error)
	RemoveLastChallenge(ctx context.Context, userID, id int64) error
}

// Refresher is anything that can reload itself.
type Refresher interface {
	Refresh() tea.Cmd
}

// ErrorMessage turns a service error into text for the screen.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotLoggedIn):
		return msgNotLoggedIn
	case errors.Is(err, api.ErrNetwork):
		return "서버에 연결할 수 없습니다"
	case errors.Is(err, api.ErrInvalidResponse):
		return "서버가 요청을 처리하지 못했습니다"
	case errors.Is(err, api.ErrDecoding):
		return "서버 응답을 읽을 수 없습니다"
	default:
		return "알 수 없는 오류가 발생했습니다"
	}
}
