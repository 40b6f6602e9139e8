// Package model defines shared data structures.
package model

import (
	"fmt"
	"math"
	"time"
)

// DefaultAssessment is shown until the backend returns an assessment.
const DefaultAssessment = "평가를 기다리는 중입니다"

// User is the identity returned by the login endpoint.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Challenge is an in-progress goal. An ID of 0 marks an unsaved draft.
type Challenge struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	Progress    float64 `json:"progress"`
}

// NewChallenge builds a Challenge with progress clamped into [0, 1].
func NewChallenge(id int64, title, description string, duration int, progress float64) Challenge {
	return Challenge{
		ID:          id,
		Title:       title,
		Description: description,
		Duration:    duration,
		Progress:    math.Min(1, math.Max(0, progress)),
	}
}

// NewDraft builds an unsaved challenge.
func NewDraft(title, description string, duration int) Challenge {
	return NewChallenge(0, title, description, duration, 0)
}

// IsDraft reports whether the challenge has not been persisted yet.
func (c Challenge) IsDraft() bool {
	return c.ID == 0
}

// ProgressPercent returns the progress as a truncated whole percentage.
func (c Challenge) ProgressPercent() int {
	// The epsilon keeps values such as 0.29 from truncating to 28.
	return int(math.Floor(c.Progress*100 + 1e-9))
}

// ProgressText formats progress, e.g. "73% 완료".
func (c Challenge) ProgressText() string {
	return fmt.Sprintf("%d%% 완료", c.ProgressPercent())
}

// DurationLabel formats the target duration in days.
func (c Challenge) DurationLabel() string {
	return fmt.Sprintf("%d일", c.Duration)
}

// LastChallenge is a completed challenge with its retrospection and assessment.
type LastChallenge struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Retrospection string    `json:"retrospection"`
	Assessment    string    `json:"assessment"`
}

// LastChallengeFromChallenge builds a completion record ending at now.
func LastChallengeFromChallenge(c Challenge, retrospection, assessment string, now time.Time) LastChallenge {
	if assessment == "" {
		assessment = DefaultAssessment
	}
	return LastChallenge{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		StartDate:     now.AddDate(0, 0, -c.Duration),
		EndDate:       now,
		Retrospection: retrospection,
		Assessment:    assessment,
	}
}

// DurationText reports the largest whole calendar unit between start and end.
func (l LastChallenge) DurationText() string {
	years, months, days := calendarSpan(l.StartDate, l.EndDate)
	switch {
	case years > 0:
		return fmt.Sprintf("%d년", years)
	case months > 0:
		return fmt.Sprintf("%d개월", months)
	case days > 0:
		return fmt.Sprintf("%d일", days)
	default:
		return "완료"
	}
}

// DateRangeText formats the span for the detail header.
func (l LastChallenge) DateRangeText() string {
	return fmt.Sprintf("%s 도전 | %s - %s", l.DurationText(), l.StartDate.Format("2006.01.02"), l.EndDate.Format("2006.01.02"))
}

// ShareMessage is the text offered when sharing a completed challenge.
func (l LastChallenge) ShareMessage() string {
	return fmt.Sprintf("[%s] 도전을 성공적으로 완료했습니다! %s 동안 %s", l.Title, l.DurationText(), l.Description)
}

// calendarSpan splits the interval into whole years, then months, then days.
// Month steps clamp to the last day of the target month, so Mar 31 plus one
// month is Apr 30.
func calendarSpan(start, end time.Time) (years, months, days int) {
	if !end.After(start) {
		return 0, 0, 0
	}
	end = end.In(start.Location())

	total := 12*(end.Year()-start.Year()) + int(end.Month()) - int(start.Month())
	for total > 0 && addMonthsClamped(start, total).After(end) {
		total--
	}
	anchor := addMonthsClamped(start, total)

	for anchor.AddDate(0, 0, days+1).Compare(end) <= 0 {
		days++
	}
	return total / 12, total % 12, days
}

// addMonthsClamped moves t by n months, keeping the day within the target month.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
