package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/viewmodel"
)

const msgInvalidForm = "제목, 내용, 1일 이상의 기간을 입력해주세요"

func (m *Model) selectedChallenge() (model.Challenge, bool) {
	if m.challenges == nil || m.cursor < 0 || m.cursor >= len(m.challenges.Challenges) {
		return model.Challenge{}, false
	}
	return m.challenges.Challenges[m.cursor], true
}

func (m *Model) clampCursor() {
	count := len(m.challenges.Challenges)
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) updateChallengesTab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.challenges.Challenges)-1 {
			m.cursor++
		}
	case "n":
		return m, m.openForm()
	case "p", "d":
		if ch, ok := m.selectedChallenge(); ok {
			m.challenges.RequestPause(ch)
		}
	case "enter", "c":
		if ch, ok := m.selectedChallenge(); ok && m.challenges.SelectForCompletion(ch.ID) {
			return m, m.openCompletion(*m.challenges.Completing)
		}
	}
	return m, nil
}

func (m *Model) renderChallenges(height int) string {
	c := m.challenges
	if c.Loading && len(c.Challenges) == 0 {
		return m.loadingLine("도전 목록을 불러오는 중...")
	}
	if c.Err != "" {
		return errorStyle.Render(c.Err) + "\n" + mutedStyle.Render("r 키로 다시 시도하세요")
	}
	lines := []string{titleStyle.Render("도전 목록")}
	if c.Loading {
		lines[0] += " " + m.spinner.View()
	}
	if len(c.Challenges) == 0 {
		lines = append(lines, "", mutedStyle.Render("진행 중인 도전이 없습니다. n 키로 새 도전을 만들어보세요."))
		return strings.Join(lines, "\n")
	}

	width := contentWidth(m.width)
	cardHeight := lipgloss.Height(cardStyle.Render("x\nx"))
	visible := maxInt(1, (height-1)/cardHeight)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := minInt(len(c.Challenges), start+visible)
	for i := start; i < end; i++ {
		lines = append(lines, renderChallengeCard(c.Challenges[i], i == m.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func renderChallengeCard(ch model.Challenge, selected bool, width int) string {
	inner := maxInt(10, width-4)
	meta := fmt.Sprintf("%s · %s", ch.DurationLabel(), ch.ProgressText())
	titleWidth := maxInt(1, inner-lipgloss.Width(meta)-2)
	title := truncateLine(ch.Title, titleWidth)
	gap := maxInt(1, inner-lipgloss.Width(title)-lipgloss.Width(meta))
	head := titleStyle.Render(title) + strings.Repeat(" ", gap) + accentStyle.Render(meta)
	desc := mutedStyle.Render(truncateLine(ch.Description, inner))
	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Width(inner + 2).Render(head + "\n" + desc)
}

func (m *Model) viewPauseModal() string {
	ch := m.challenges.Pending
	body := []string{
		titleStyle.Render("포기하기"),
		"",
		fmt.Sprintf("'%s' 도전을 포기할까요?", truncateLine(ch.Title, modalWidth(m.width)-20)),
		mutedStyle.Render(ch.ProgressText()),
		"",
		headerStyle.Render("확인: y  취소: n"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) openForm() tea.Cmd {
	m.form = viewmodel.NewNewChallengeModel(m.deps.Session, m.deps.Challenges, m.deps.Now())
	m.formErr = ""
	for i := range m.formInputs {
		m.formInputs[i].SetValue("")
	}
	m.screen = screenNewChallenge
	return m.setFormIndex(0)
}

func (m *Model) setFormIndex(idx int) tea.Cmd {
	count := len(m.formInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.formIndex = idx
	var cmd tea.Cmd
	for i := range m.formInputs {
		if i == m.formIndex {
			cmd = m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) syncForm() {
	m.form.Title = m.formInputs[0].Value()
	m.form.Description = m.formInputs[1].Value()
	m.form.Period = m.formInputs[2].Value()
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.screen = screenMain
		m.form = nil
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFormIndex(m.formIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFormIndex(m.formIndex - 1)
	case tea.KeyEnter:
		m.syncForm()
		cmd, err := m.form.Submit()
		if err != nil {
			m.formErr = msgInvalidForm
			if errors.Is(err, viewmodel.ErrNotLoggedIn) {
				m.formErr = viewmodel.ErrorMessage(err)
			}
			return m, nil
		}
		if m.form.ShouldDismiss {
			m.screen = screenMain
			m.form = nil
		}
		return m, cmd
	}
	var cmd tea.Cmd
	m.formInputs[m.formIndex], cmd = m.formInputs[m.formIndex].Update(msg)
	m.syncForm()
	m.formErr = ""
	return m, cmd
}

func (m *Model) viewForm() string {
	lines := []string{titleStyle.Render("새 도전 만들기"), ""}
	for _, input := range m.formInputs {
		lines = append(lines, input.View())
	}
	lines = append(lines, "", mutedStyle.Render("도전 시작일: "+m.form.FormattedDate()))
	if m.form.IsFormValid() {
		lines = append(lines, "", accentStyle.Render("[ 도전 시작하기 ]")+mutedStyle.Render("  enter"))
	} else {
		lines = append(lines, "", mutedStyle.Render("[ 도전 시작하기 ]"))
	}
	if m.formErr != "" {
		lines = append(lines, errorStyle.Render(m.formErr))
	}
	lines = append(lines, "", headerStyle.Render("다음: tab  이전: shift+tab  취소: esc"))
	return fitLines(strings.Join(lines, "\n"), m.width, m.height)
}
