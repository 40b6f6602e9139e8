package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/verte-zerg/challenger/internal/api"
	"github.com/verte-zerg/challenger/internal/model"
)

// ErrDraftChallenge is returned for operations that need a persisted challenge.
var ErrDraftChallenge = errors.New("challenge has not been saved yet")

// ChallengeService manages active challenges.
type ChallengeService struct {
	client *api.Client
}

// NewChallengeService returns a ChallengeService backed by client.
func NewChallengeService(client *api.Client) *ChallengeService {
	return &ChallengeService{client: client}
}

// Create stores a new challenge and returns the server-assigned id.
func (s *ChallengeService) Create(ctx context.Context, userID int64, title, description string, duration int) (int64, error) {
	resp, err := api.Request[challengeResponse](ctx, s.client, http.MethodPost, "challenges", createChallengeRequest{
		UserID:      userID,
		Title:       title,
		Description: description,
		Duration:    duration,
	})
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// List returns the user's active challenges.
func (s *ChallengeService) List(ctx context.Context, userID int64) ([]model.Challenge, error) {
	resp, err := api.Request[[]challengeResponse](ctx, s.client, http.MethodGet, "challenges/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return nil, err
	}
	challenges := make([]model.Challenge, 0, len(resp))
	for _, r := range resp {
		progress := 0.0
		if r.Progress != nil {
			progress = *r.Progress
		}
		challenges = append(challenges, model.NewChallenge(r.ID, r.Title, r.Description, r.Duration, progress))
	}
	return challenges, nil
}

// Delete removes a persisted challenge. Drafts are rejected without a request.
func (s *ChallengeService) Delete(ctx context.Context, challengeID int64) error {
	if challengeID == 0 {
		return ErrDraftChallenge
	}
	return api.RequestNoResponse(ctx, s.client, http.MethodDelete, "challenges/"+strconv.FormatInt(challengeID, 10), nil)
}
