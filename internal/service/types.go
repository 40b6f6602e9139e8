// Package service maps challenge operations onto backend requests.
package service

// Wire shapes of the REST contract.

type loginRequest struct {
	Username string `json:"username"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type createChallengeRequest struct {
	UserID      int64  `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

type challengeResponse struct {
	ID          int64    `json:"id"`
	UserID      int64    `json:"userId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Progress    *float64 `json:"progress"`
	Duration    int      `json:"duration"`
}

type createLastChallengeRequest struct {
	UserID        int64  `json:"userId"`
	ChallengeID   int64  `json:"challengeId"`
	Retrospection string `json:"retrospection"`
}

type lastChallengeResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Retrospection string `json:"retrospection"`
	Assessment    string `json:"assessment"`
	Duration      *int   `json:"duration,omitempty"`
}
