package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/textfmt"
	"github.com/verte-zerg/challenger/internal/viewmodel"
)

func buildHistoryTable(records []model.LastChallenge, width, height int) table.Model {
	cols, rows := buildHistoryTableData(records, width)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height)),
	)
	t.SetWidth(width)
	t.SetStyles(historyTableStyles())
	return t
}

func buildHistoryTableData(records []model.LastChallenge, width int) ([]table.Column, []table.Row) {
	fixed := 8 + 25
	titleWidth := maxInt(10, (width-fixed)/2)
	assessmentWidth := maxInt(10, width-fixed-titleWidth)
	columns := []table.Column{
		{Title: "제목", Width: titleWidth},
		{Title: "기간", Width: 8},
		{Title: "날짜", Width: 25},
		{Title: "응원 메시지", Width: assessmentWidth},
	}
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.Title,
			r.DurationText(),
			fmt.Sprintf("%s - %s", r.StartDate.Format("2006.01.02"), r.EndDate.Format("2006.01.02")),
			strings.ReplaceAll(r.Assessment, "\n", " "),
		})
	}
	return columns, rows
}

func (m *Model) syncHistoryTable() {
	if m.history == nil {
		m.historyTable.SetRows(nil)
		return
	}
	cols, rows := buildHistoryTableData(m.history.LastChallenges, contentWidth(m.width))
	m.historyTable.SetColumns(cols)
	m.historyTable.SetRows(rows)
	if m.historyTable.Cursor() >= len(rows) {
		m.historyTable.SetCursor(maxInt(0, len(rows)-1))
	}
}

func (m *Model) updateHistoryTab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		idx := m.historyTable.Cursor()
		if idx >= 0 && idx < len(m.history.LastChallenges) {
			m.openDetail(m.history.LastChallenges[idx])
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.historyTable, cmd = m.historyTable.Update(msg)
	return m, cmd
}

func (m *Model) renderHistory(height int) string {
	h := m.history
	if h.Loading && len(h.LastChallenges) == 0 {
		return m.loadingLine("지난 도전을 불러오는 중...")
	}
	if h.Err != "" {
		return errorStyle.Render(h.Err) + "\n" + mutedStyle.Render("r 키로 다시 시도하세요")
	}
	header := titleStyle.Render(fmt.Sprintf("완료한 도전 : 총 %d개", len(h.LastChallenges)))
	if h.Loading {
		header += " " + m.spinner.View()
	}
	if len(h.LastChallenges) == 0 {
		return header + "\n\n" + mutedStyle.Render("완료한 도전이 없습니다")
	}
	return fitLines(header+"\n"+m.historyTable.View(), m.width, height)
}

func (m *Model) openDetail(record model.LastChallenge) {
	m.detail = viewmodel.NewLastChallengeModel(record)
	m.screen = screenDetail
	m.detailView.Width = contentWidth(m.width)
	m.detailView.Height = maxInt(1, m.height-2)
	m.detailView.SetContent(m.renderDetailContent())
	m.detailView.GotoTop()
}

func (m *Model) renderDetailContent() string {
	d := m.detail
	width := contentWidth(m.width)
	lines := []string{
		titleStyle.Render(d.Record.Title),
		mutedStyle.Render(d.DateRangeText()),
		"",
	}
	lines = append(lines, textfmt.Wrap(d.Record.Description, width)...)
	lines = append(lines, "", accentStyle.Render("내 회고"))
	if strings.TrimSpace(d.Record.Retrospection) == "" {
		lines = append(lines, mutedStyle.Render("아직 회고가 작성되지 않았습니다. 이 도전을 통해 무엇을 느꼈는지 기록해보세요."))
	} else {
		lines = append(lines, textfmt.Wrap(d.Record.Retrospection, width)...)
	}
	lines = append(lines, "", accentStyle.Render("응원 메시지"), strings.TrimRight(renderMarkdown(d.Record.Assessment, width-4), "\n"))
	return strings.Join(lines, "\n")
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.detail = nil
		m.screen = screenMain
		return m, nil
	case "s":
		return m, m.detail.Share()
	case "x":
		cmd := m.history.Remove(m.detail.Record.ID)
		m.syncHistoryTable()
		m.detail = nil
		m.screen = screenMain
		return m, cmd
	}
	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	return m, cmd
}

func (m *Model) viewDetail() string {
	footer := "공유: s  목록에서 숨기기: x  스크롤: up/down  뒤로: esc"
	out := m.detailView.View() + "\n" + headerStyle.Render(truncateLine(footer, m.width))
	if m.detail.Notice != "" {
		out += "\n" + noticeStyle.Render(m.detail.Notice)
	}
	return fitLines(out, m.width, m.height)
}
