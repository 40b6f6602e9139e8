package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) initInputs() {
	m.nicknameInput = newInput("닉네임: ", "닉네임을 입력해주세요")
	m.formInputs = []textinput.Model{
		newInput("도전 제목: ", "도전 제목을 입력하세요"),
		newInput("도전 내용: ", "도전에 대한 설명을 입력하세요"),
		newInput("목표 기간(일): ", "30"),
	}

	m.retroInput = textarea.New()
	m.retroInput.Placeholder = "도전을 진행하면서 느낀 점, 어려웠던 점, 배운 점 등을 자유롭게 적어주세요."
	m.retroInput.ShowLineNumbers = false
	m.retroInput.CharLimit = 0
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.login.Nickname = m.nicknameInput.Value()
		return m, m.login.Submit()
	}
	var cmd tea.Cmd
	m.nicknameInput, cmd = m.nicknameInput.Update(msg)
	m.login.Nickname = m.nicknameInput.Value()
	return m, cmd
}

func (m *Model) viewLogin() string {
	lines := []string{
		titleStyle.Render("환영합니다!"),
		mutedStyle.Render("닉네임을 입력하고 시작하세요"),
		"",
		m.nicknameInput.View(),
		"",
	}
	switch {
	case m.login.Submitting:
		lines = append(lines, m.loadingLine("로그인 중..."))
	case m.login.IsButtonEnabled():
		lines = append(lines, accentStyle.Render("[ 시작하기 ]")+mutedStyle.Render("  enter"))
	default:
		lines = append(lines, mutedStyle.Render("[ 시작하기 ]"))
	}
	if m.login.Err != "" {
		lines = append(lines, errorStyle.Render(m.login.Err))
	}
	lines = append(lines, "", headerStyle.Render("종료: esc"))
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
