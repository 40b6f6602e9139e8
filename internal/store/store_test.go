package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "challenger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSessionRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	empty, err := st.LoadSession(ctx)
	if err != nil {
		t.Fatalf("load empty session: %v", err)
	}
	if empty.LoggedIn() {
		t.Fatalf("expected no identity, got %+v", empty)
	}

	if err := st.SaveSession(ctx, session.Session{UserID: 7, Nickname: "alice"}); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if err := st.SaveSession(ctx, session.Session{UserID: 8, Nickname: "bob"}); err != nil {
		t.Fatalf("overwrite session: %v", err)
	}
	got, err := st.LoadSession(ctx)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if got.UserID != 8 || got.Nickname != "bob" {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := st.ClearSession(ctx); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	got, err = st.LoadSession(ctx)
	if err != nil {
		t.Fatalf("load cleared session: %v", err)
	}
	if got.LoggedIn() {
		t.Fatalf("expected cleared session, got %+v", got)
	}
}

func TestChallengeCacheRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	want := []model.Challenge{
		model.NewChallenge(3, "Run", "Daily jog", 30, 0.73),
		model.NewChallenge(1, "독서", "하루 한 장", 100, 0),
		model.NewChallenge(9, "Swim", "", 5, 1),
	}
	if err := st.SaveChallenges(ctx, 7, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.SaveChallenges(ctx, 8, want[:1]); err != nil {
		t.Fatalf("save other user: %v", err)
	}
	got, err := st.LoadChallenges(ctx, 7)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}

	if err := st.SaveChallenges(ctx, 7, nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	got, err = st.LoadChallenges(ctx, 7)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty cache, got %+v", got)
	}
}

func TestLastChallengeCache(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []model.LastChallenge{
		{ID: 1, Title: "a", Description: "d", StartDate: end.AddDate(0, 0, -5), EndDate: end, Retrospection: "r", Assessment: "ok"},
		{ID: 2, Title: "b", Description: "d", StartDate: end.AddDate(-1, 0, 0), EndDate: end, Assessment: model.DefaultAssessment},
	}
	if err := st.SaveLastChallenges(ctx, 7, records); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.RemoveLastChallenge(ctx, 7, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err := st.LoadLastChallenges(ctx, 7)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 || !got[0].StartDate.Equal(records[1].StartDate) || got[0].DurationText() != "1년" {
		t.Fatalf("unexpected cache contents %+v", got)
	}
}
