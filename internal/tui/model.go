// Package tui provides the Bubble Tea interface for challenges.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/challenger/internal/session"
	"github.com/verte-zerg/challenger/internal/viewmodel"
)

type screen int

const (
	screenLogin screen = iota
	screenMain
	screenNewChallenge
	screenCompletion
	screenDetail
)

const (
	tabChallenges = iota
	tabHistory
)

// Deps are the collaborators the screens are built from.
type Deps struct {
	Session    *session.Session
	Users      viewmodel.UserService
	Challenges viewmodel.ChallengeService
	History    viewmodel.LastChallengeService
	// SessionStore, ChallengeCache and HistoryCache may be nil.
	SessionStore   viewmodel.SessionStore
	ChallengeCache viewmodel.ChallengeCache
	HistoryCache   viewmodel.HistoryCache
	Now            func() time.Time
}

// Model implements the Bubble Tea challenge UI.
type Model struct {
	deps Deps

	screen    screen
	tabs      []string
	activeTab int

	width  int
	height int

	login      *viewmodel.LoginModel
	challenges *viewmodel.ChallengesModel
	history    *viewmodel.HistoryModel
	form       *viewmodel.NewChallengeModel
	completion *viewmodel.CompletionModel
	detail     *viewmodel.LastChallengeModel

	nicknameInput textinput.Model
	formInputs    []textinput.Model
	formIndex     int
	formErr       string
	retroInput    textarea.Model
	historyTable  table.Model
	detailView    viewport.Model
	spinner       spinner.Model

	cursor     int
	assessment string
}

// NewModel constructs the UI. A logged-in session starts on the main screen.
func NewModel(deps Deps) *Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Session == nil {
		deps.Session = &session.Session{}
	}
	m := &Model{
		deps:    deps,
		tabs:    []string{"도전", "지난 도전"},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
	}
	m.login = viewmodel.NewLoginModel(deps.Session, deps.Users, deps.SessionStore)
	m.initInputs()
	m.historyTable = buildHistoryTable(nil, 80, 10)
	m.detailView = viewport.New(0, 0)
	if deps.Session.LoggedIn() {
		m.screen = screenMain
		m.challenges = viewmodel.NewChallengesModel(deps.Session, deps.Challenges, deps.ChallengeCache)
		m.history = viewmodel.NewHistoryModel(deps.Session, deps.History, deps.HistoryCache)
	} else {
		m.screen = screenLogin
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenLogin {
		return tea.Batch(m.spinner.Tick, m.nicknameInput.Focus())
	}
	return tea.Batch(m.spinner.Tick, m.challenges.Refresh(), m.history.Refresh())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case viewmodel.LoggedInMsg:
		cmd := m.login.Update(msg)
		if m.login.Complete && m.screen == screenLogin {
			return m, tea.Batch(cmd, m.enterMain())
		}
		return m, cmd
	case viewmodel.ChallengesLoadedMsg, viewmodel.ChallengesCachedMsg,
		viewmodel.ChallengeDeletedMsg, viewmodel.ChallengeCreatedMsg:
		if m.challenges == nil {
			return m, nil
		}
		cmd := m.challenges.Update(msg)
		m.clampCursor()
		return m, cmd
	case viewmodel.HistoryLoadedMsg, viewmodel.HistoryCachedMsg:
		if m.history == nil {
			return m, nil
		}
		cmd := m.history.Update(msg)
		m.syncHistoryTable()
		return m, cmd
	case viewmodel.RetrospectionSavedMsg:
		if m.completion == nil {
			return m, nil
		}
		cmd := m.completion.Update(msg)
		if m.completion.ShowSuccess {
			m.assessment = renderMarkdown(m.completion.Assessment, contentWidth(m.width)-4)
		}
		return m, cmd
	case viewmodel.SharedMsg:
		if m.detail == nil {
			return m, nil
		}
		return m, m.detail.Update(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenNewChallenge:
			return m.updateForm(msg)
		case screenCompletion:
			return m.updateCompletion(msg)
		case screenDetail:
			return m.updateDetail(msg)
		default:
			return m.updateMain(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	switch m.screen {
	case screenLogin:
		return m.viewLogin()
	case screenNewChallenge:
		return m.viewForm()
	case screenCompletion:
		return m.viewCompletion()
	case screenDetail:
		return m.viewDetail()
	}
	if m.challenges != nil && m.challenges.Pending != nil {
		return m.viewPauseModal()
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) enterMain() tea.Cmd {
	m.screen = screenMain
	m.activeTab = tabChallenges
	m.cursor = 0
	m.nicknameInput.Blur()
	m.nicknameInput.SetValue("")
	m.challenges = viewmodel.NewChallengesModel(m.deps.Session, m.deps.Challenges, m.deps.ChallengeCache)
	m.history = viewmodel.NewHistoryModel(m.deps.Session, m.deps.History, m.deps.HistoryCache)
	m.syncHistoryTable()
	return tea.Batch(m.challenges.Refresh(), m.history.Refresh())
}

func (m *Model) logout() tea.Cmd {
	cmd := m.login.Logout()
	m.screen = screenLogin
	m.challenges = nil
	m.history = nil
	m.form = nil
	m.completion = nil
	m.detail = nil
	return tea.Batch(cmd, m.nicknameInput.Focus())
}

func (m *Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.challenges.Pending != nil {
		switch msg.String() {
		case "y", "enter":
			return m, m.challenges.ConfirmPause()
		case "n", "esc":
			m.challenges.CancelPause()
		}
		return m, nil
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "left", "right", "h", "l":
		m.moveTab()
		return m, tea.ClearScreen
	case "r":
		m.challenges.DismissNotice()
		if m.activeTab == tabHistory {
			return m, m.history.Refresh()
		}
		return m, m.challenges.Refresh()
	case "L":
		return m, m.logout()
	}
	if m.activeTab == tabHistory {
		return m.updateHistoryTab(msg)
	}
	return m.updateChallengesTab(msg)
}

func (m *Model) moveTab() {
	m.activeTab = (m.activeTab + 1) % len(m.tabs)
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.historyTable.SetWidth(contentWidth(m.width))
	m.historyTable.SetHeight(maxInt(1, bodyHeight-2))
	m.nicknameInput.Width = maxInt(10, modalWidth(m.width)-lipgloss.Width(m.nicknameInput.Prompt)-8)
	for i := range m.formInputs {
		m.formInputs[i].Width = maxInt(10, contentWidth(m.width)-lipgloss.Width(m.formInputs[i].Prompt)-2)
	}
	m.retroInput.SetWidth(contentWidth(m.width))
	m.retroInput.SetHeight(maxInt(3, m.height/3))
	m.detailView.Width = contentWidth(m.width)
	m.detailView.Height = maxInt(1, m.height-2)
	if m.detail != nil {
		m.detailView.SetContent(m.renderDetailContent())
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.challenges != nil && m.challenges.Notice != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	user := headerStyle.Render(truncateLine(m.deps.Session.Nickname+" 님의 도전", m.width))
	return tabs + "\n" + user
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabHistory {
		return m.renderHistory(height)
	}
	return m.renderChallenges(height)
}

func (m *Model) renderFooter() string {
	help := "전환: tab  새 도전: n  회고: enter  포기: p  새로고침: r  로그아웃: L  종료: q"
	if m.activeTab == tabHistory {
		help = "전환: tab  이동: up/down  자세히: enter  새로고침: r  로그아웃: L  종료: q"
	}
	out := headerStyle.Render(truncateLine(help, m.width))
	if m.challenges != nil && m.challenges.Notice != "" {
		out += "\n" + noticeStyle.Render(m.challenges.Notice)
	}
	return out
}

func (m *Model) loadingLine(text string) string {
	return m.spinner.View() + " " + mutedStyle.Render(text)
}
