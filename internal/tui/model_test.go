package tui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/challenger/internal/api"
	"github.com/verte-zerg/challenger/internal/fakebackend"
	"github.com/verte-zerg/challenger/internal/service"
	"github.com/verte-zerg/challenger/internal/session"
	"github.com/verte-zerg/challenger/internal/viewmodel"
)

func newTestModel(t *testing.T, b *fakebackend.Backend, sess *session.Session) *Model {
	t.Helper()
	client, err := api.New(b.URL(), b.Client())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	m := NewModel(Deps{
		Session:    sess,
		Users:      service.NewUserService(client),
		Challenges: service.NewChallengeService(client),
		History:    service.NewLastChallengeService(client),
		Now: func() time.Time {
			return time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
		},
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// run executes cmd and feeds the challenge messages it produces back into m.
// Timer messages (spinner ticks, cursor blinks) are dropped so nothing loops.
func run(m *Model, cmd tea.Cmd) {
	for _, msg := range results(cmd) {
		_, next := m.Update(msg)
		run(m, next)
	}
}

func results(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(2 * time.Second):
		return nil
	}
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var (
			mu  sync.Mutex
			wg  sync.WaitGroup
			out = make([][]tea.Msg, len(msg))
		)
		for i, c := range msg {
			wg.Add(1)
			go func(i int, c tea.Cmd) {
				defer wg.Done()
				res := results(c)
				mu.Lock()
				out[i] = res
				mu.Unlock()
			}(i, c)
		}
		wg.Wait()
		var flat []tea.Msg
		for _, res := range out {
			flat = append(flat, res...)
		}
		return flat
	case viewmodel.LoggedInMsg, viewmodel.ChallengesLoadedMsg, viewmodel.ChallengesCachedMsg,
		viewmodel.ChallengeDeletedMsg, viewmodel.ChallengeCreatedMsg, viewmodel.HistoryLoadedMsg,
		viewmodel.HistoryCachedMsg, viewmodel.RetrospectionSavedMsg, viewmodel.SharedMsg:
		return []tea.Msg{msg}
	default:
		return nil
	}
}

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		_, cmd := m.Update(k)
		run(m, cmd)
	}
}

func typeText(m *Model, s string) {
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	ctrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func TestLoginShowsActiveChallenges(t *testing.T) {
	b := fakebackend.New(t)
	b.SetUserID(7)
	progress := 0.739
	b.AddChallenge(fakebackend.Challenge{UserID: 7, Title: "Run", Description: "Daily jog", Duration: 30, Progress: &progress})

	sess := &session.Session{}
	m := newTestModel(t, b, sess)
	run(m, m.Init())
	if !containsAll(m.View(), []string{"환영합니다!", "닉네임"}) {
		t.Fatalf("expected login screen, got:\n%s", m.View())
	}

	press(m, enter)
	if len(b.Calls()) != 0 {
		t.Fatalf("empty nickname must not log in")
	}

	typeText(m, "alice")
	press(m, enter)
	if sess.UserID != 7 || sess.Nickname != "alice" {
		t.Fatalf("unexpected session %+v", sess)
	}
	view := m.View()
	if !containsAll(view, []string{"alice", "Run", "30일", "73% 완료"}) {
		t.Fatalf("expected active list, got:\n%s", view)
	}
}

func TestPauseConfirmation(t *testing.T) {
	b := fakebackend.New(t)
	b.AddChallenge(fakebackend.Challenge{UserID: 7, Title: "Run", Description: "Daily jog", Duration: 30})
	m := newTestModel(t, b, &session.Session{UserID: 7, Nickname: "alice"})
	run(m, m.Init())

	press(m, key("p"))
	if !strings.Contains(m.View(), "도전을 포기할까요?") {
		t.Fatalf("expected confirmation, got:\n%s", m.View())
	}
	press(m, key("n"))
	if b.CallCount("DELETE", "/challenges/1") != 0 {
		t.Fatalf("cancel must not delete")
	}

	press(m, key("p"), key("y"))
	if got := b.CallCount("DELETE", "/challenges/1"); got != 1 {
		t.Fatalf("expected one delete, got %d", got)
	}
	if !strings.Contains(m.View(), "진행 중인 도전이 없습니다") {
		t.Fatalf("expected empty list after pause, got:\n%s", m.View())
	}
}

func TestNewChallengeForm(t *testing.T) {
	b := fakebackend.New(t)
	m := newTestModel(t, b, &session.Session{UserID: 7, Nickname: "alice"})
	run(m, m.Init())

	press(m, key("n"))
	if !containsAll(m.View(), []string{"새 도전 만들기", "2024년 03월 10일"}) {
		t.Fatalf("expected form, got:\n%s", m.View())
	}
	typeText(m, "Run")
	press(m, tab)
	typeText(m, "Daily jog")
	press(m, tab)
	typeText(m, "0")
	press(m, enter)
	if !strings.Contains(m.View(), msgInvalidForm) {
		t.Fatalf("expected validation message, got:\n%s", m.View())
	}
	if b.CallCount("POST", "/challenges") != 0 {
		t.Fatalf("invalid form must not be submitted")
	}

	press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	typeText(m, "30")
	press(m, enter)
	if got := b.CallCount("POST", "/challenges"); got != 1 {
		t.Fatalf("expected one create, got %d", got)
	}
	if !containsAll(m.View(), []string{"도전 목록", "Run", "30일"}) {
		t.Fatalf("expected refreshed list with the new challenge, got:\n%s", m.View())
	}
}

func TestCompletionFlow(t *testing.T) {
	b := fakebackend.New(t)
	b.SetAssessment("Great consistency")
	b.AddChallenge(fakebackend.Challenge{UserID: 7, Title: "Run", Description: "Daily jog", Duration: 30})
	m := newTestModel(t, b, &session.Session{UserID: 7, Nickname: "alice"})
	run(m, m.Init())

	press(m, enter)
	if !containsAll(m.View(), []string{"회고하기", "Run"}) {
		t.Fatalf("expected completion form, got:\n%s", m.View())
	}
	press(m, ctrlS)
	if !strings.Contains(m.View(), "회고 내용을 입력해주세요") {
		t.Fatalf("expected empty retrospection error, got:\n%s", m.View())
	}
	if b.CallCount("POST", "/last-challenges") != 0 {
		t.Fatalf("empty retrospection must not be sent")
	}

	typeText(m, "ran every day")
	press(m, ctrlS)
	if got := b.CallCount("POST", "/last-challenges"); got != 1 {
		t.Fatalf("expected one save, got %d", got)
	}
	if !containsAll(m.View(), []string{"100% 완료!", "Great", "consistency"}) {
		t.Fatalf("expected success screen, got:\n%s", m.View())
	}

	press(m, enter)
	if !strings.Contains(m.View(), "진행 중인 도전이 없습니다") {
		t.Fatalf("expected refreshed active list, got:\n%s", m.View())
	}
	press(m, tab)
	if !containsAll(m.View(), []string{"완료한 도전 : 총 1개", "Run", "1개월"}) {
		t.Fatalf("expected history with the completed challenge, got:\n%s", m.View())
	}
}

func TestHistoryDetail(t *testing.T) {
	b := fakebackend.New(t)
	b.AddLastChallenge(fakebackend.LastChallenge{ID: 3, UserID: 7, Title: "Read", Description: "One page a day", StartDate: "2024-03-05", EndDate: "2024-03-10", Retrospection: "fun", Assessment: "Nice"})
	m := newTestModel(t, b, &session.Session{UserID: 7, Nickname: "alice"})
	run(m, m.Init())

	press(m, tab, enter)
	if !containsAll(m.View(), []string{"Read", "5일 도전 | 2024.03.05 - 2024.03.10", "One page a day", "내 회고", "fun", "Nice"}) {
		t.Fatalf("expected detail view, got:\n%s", m.View())
	}
	press(m, key("x"))
	if !strings.Contains(m.View(), "완료한 도전이 없습니다") {
		t.Fatalf("expected record hidden from the list, got:\n%s", m.View())
	}
}

func TestListErrorShownInPlaceOfList(t *testing.T) {
	b := fakebackend.New(t)
	b.FailNext("GET /challenges/", 1)
	m := newTestModel(t, b, &session.Session{UserID: 7, Nickname: "alice"})
	run(m, m.Init())
	if !strings.Contains(m.View(), viewmodel.ErrorMessage(&api.InvalidResponseError{StatusCode: 500})) {
		t.Fatalf("expected error message, got:\n%s", m.View())
	}
	press(m, key("r"))
	if strings.Contains(m.View(), "r 키로 다시 시도하세요") {
		t.Fatalf("expected error cleared after retry, got:\n%s", m.View())
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	b := fakebackend.New(t)
	sess := &session.Session{UserID: 7, Nickname: "alice"}
	m := newTestModel(t, b, sess)
	run(m, m.Init())
	press(m, key("L"))
	if sess.LoggedIn() {
		t.Fatalf("expected session cleared")
	}
	if !strings.Contains(m.View(), "환영합니다!") {
		t.Fatalf("expected login screen, got:\n%s", m.View())
	}
}
