package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/challenger/internal/fakebackend"
)

func setupEnv(t *testing.T) *fakebackend.Backend {
	t.Helper()
	b := fakebackend.New(t)
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("CHALLENGER_BASE_URL", b.URL())
	t.Setenv("CHALLENGER_CACHE", "")
	t.Setenv("SENTRY_DSN", "")
	return b
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommandsRequireLogin(t *testing.T) {
	setupEnv(t)
	if _, err := execute(t, "list"); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected login error, got %v", err)
	}
}

func TestLoginPersistsAcrossCommands(t *testing.T) {
	b := setupEnv(t)
	b.SetUserID(7)
	b.AddChallenge(fakebackend.Challenge{UserID: 7, Title: "Run", Description: "Daily jog", Duration: 30})

	out, err := execute(t, "login", "alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "alice") {
		t.Fatalf("unexpected login output %q", out)
	}

	out, err = execute(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Run") || !strings.Contains(out, "0% 완료") {
		t.Fatalf("unexpected list output %q", out)
	}

	if _, err := execute(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := execute(t, "list"); err == nil {
		t.Fatalf("expected list to fail after logout")
	}
}

func TestNewPauseAndComplete(t *testing.T) {
	b := setupEnv(t)
	b.SetUserID(7)
	b.SetAssessment("Great consistency")
	if _, err := execute(t, "login", "alice"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := execute(t, "new", "--title", "Run", "--description", "Daily jog", "--days", "0"); err == nil {
		t.Fatalf("expected invalid period to fail")
	}
	if got := b.CallCount("POST", "/challenges"); got != 0 {
		t.Fatalf("invalid form must not be sent, got %d calls", got)
	}

	if _, err := execute(t, "new", "--title", "Run", "--description", "Daily jog", "--days", "30"); err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := execute(t, "new", "--title", "Read", "--description", "One page", "--days", "7"); err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := execute(t, "pause", "2"); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if got := b.CallCount("DELETE", "/challenges/2"); got != 1 {
		t.Fatalf("expected one delete, got %d", got)
	}

	if _, err := execute(t, "complete", "1"); err == nil {
		t.Fatalf("expected empty retrospection to fail")
	}
	out, err := execute(t, "complete", "1", "--retrospection", "ran every day")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, "Great consistency") {
		t.Fatalf("expected assessment in output, got %q", out)
	}

	out, err = execute(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "총 1개") || !strings.Contains(out, "Run") {
		t.Fatalf("unexpected history output %q", out)
	}
}

func TestPauseUnknownChallenge(t *testing.T) {
	b := setupEnv(t)
	b.SetUserID(7)
	if _, err := execute(t, "login", "alice"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := execute(t, "pause", "99"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNewReportsFailedRefresh(t *testing.T) {
	b := setupEnv(t)
	b.SetUserID(7)
	if _, err := execute(t, "login", "alice"); err != nil {
		t.Fatalf("login: %v", err)
	}
	b.FailNext("GET /challenges/", 1)
	out, err := execute(t, "new", "--title", "Run", "--description", "Daily jog", "--days", "30")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if strings.Contains(out, "진행 중 0개") || !strings.Contains(out, "목록을 불러오지 못했습니다") {
		t.Fatalf("expected refresh failure in output, got %q", out)
	}
	if got := b.CallCount("POST", "/challenges"); got != 1 {
		t.Fatalf("expected one create, got %d", got)
	}
}

func TestShowCompletedChallenge(t *testing.T) {
	b := setupEnv(t)
	b.SetUserID(7)
	b.AddLastChallenge(fakebackend.LastChallenge{ID: 3, UserID: 7, Title: "Read", Description: "One page a day", StartDate: "2024-03-31", EndDate: "2024-04-30", Retrospection: "fun", Assessment: "Nice"})
	if _, err := execute(t, "login", "alice"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := execute(t, "show", "3")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Read", "1개월 도전 | 2024.03.31 - 2024.04.30", "One page a day", "fun", "Nice"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
	if _, err := execute(t, "show", "9"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}
