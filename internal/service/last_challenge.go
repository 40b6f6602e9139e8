package service

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/challenger/internal/api"
	"github.com/verte-zerg/challenger/internal/model"
)

const dateLayout = "2006-01-02"

// LastChallengeService manages completed challenges.
type LastChallengeService struct {
	client *api.Client
	loc    *time.Location
	now    func() time.Time
}

// NewLastChallengeService returns a LastChallengeService that parses dates in local time.
func NewLastChallengeService(client *api.Client) *LastChallengeService {
	return &LastChallengeService{client: client, loc: time.Local, now: time.Now}
}

// Create completes a challenge with the user's retrospection.
// The returned record carries the server-generated assessment.
func (s *LastChallengeService) Create(ctx context.Context, userID, challengeID int64, retrospection string) (model.LastChallenge, error) {
	if challengeID == 0 {
		return model.LastChallenge{}, ErrDraftChallenge
	}
	resp, err := api.Request[lastChallengeResponse](ctx, s.client, http.MethodPost, "last-challenges", createLastChallengeRequest{
		UserID:        userID,
		ChallengeID:   challengeID,
		Retrospection: retrospection,
	})
	if err != nil {
		return model.LastChallenge{}, err
	}
	return s.toModel(resp), nil
}

// List returns the user's completed challenges.
func (s *LastChallengeService) List(ctx context.Context, userID int64) ([]model.LastChallenge, error) {
	resp, err := api.Request[[]lastChallengeResponse](ctx, s.client, http.MethodGet, "last-challenges/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.LastChallenge, 0, len(resp))
	for _, r := range resp {
		out = append(out, s.toModel(r))
	}
	return out, nil
}

func (s *LastChallengeService) toModel(r lastChallengeResponse) model.LastChallenge {
	end := s.parseDate(r.EndDate)
	start := end
	switch {
	case strings.TrimSpace(r.StartDate) != "":
		start = s.parseDate(r.StartDate)
	case r.Duration != nil:
		start = end.AddDate(0, 0, -*r.Duration)
	}
	assessment := r.Assessment
	if assessment == "" {
		assessment = model.DefaultAssessment
	}
	return model.LastChallenge{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		StartDate:     start,
		EndDate:       end,
		Retrospection: r.Retrospection,
		Assessment:    assessment,
	}
}

// parseDate reads a yyyy-MM-dd date, falling back to now.
func (s *LastChallengeService) parseDate(value string) time.Time {
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), s.loc)
	if err != nil {
		return s.now()
	}
	return parsed
}
