package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/textfmt"
	"github.com/verte-zerg/challenger/internal/viewmodel"
)

var nowFunc = time.Now

// drive runs cmd to completion, handing every message to update and
// following the commands it returns.
func drive(update func(tea.Msg) tea.Cmd, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, c := range msg {
			drive(update, c)
		}
	default:
		drive(update, update(msg))
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <nickname>",
		Short: "Log in with a nickname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			login := viewmodel.NewLoginModel(a.session, a.users, a.store)
			login.Nickname = args[0]
			if !login.IsButtonEnabled() {
				return fmt.Errorf("nickname is empty")
			}
			drive(login.Update, login.Submit())
			if !login.Complete {
				return errors.New(login.Err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s 님으로 로그인했습니다 (id %d)\n", a.session.Nickname, a.session.UserID)
			return err
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved nickname",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			login := viewmodel.NewLoginModel(a.session, a.users, a.store)
			drive(login.Update, login.Logout())
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show active challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			challenges, err := loadChallenges(a)
			if err != nil {
				return err
			}
			if len(challenges.Challenges) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "진행 중인 도전이 없습니다")
				return err
			}
			rows := make([][]string, 0, len(challenges.Challenges))
			for _, ch := range challenges.Challenges {
				rows = append(rows, []string{
					strconv.FormatInt(ch.ID, 10),
					ch.Title,
					ch.DurationLabel(),
					ch.ProgressText(),
				})
			}
			return printTable(cmd, []string{"ID", "제목", "기간", "진행"}, rows, map[int]bool{0: true})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show completed challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			history := viewmodel.NewHistoryModel(a.session, a.history, a.historyCache())
			drive(history.Update, history.Refresh())
			if history.Err != "" {
				return errors.New(history.Err)
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "완료한 도전 : 총 %d개\n", len(history.LastChallenges)); err != nil {
				return err
			}
			if len(history.LastChallenges) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(history.LastChallenges))
			for _, r := range history.LastChallenges {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.Title,
					r.DurationText(),
					r.DateRangeText(),
				})
			}
			return printTable(cmd, []string{"ID", "제목", "기간", "날짜"}, rows, map[int]bool{0: true})
		},
	}
}

func newShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a completed challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid challenge id %q", args[0])
			}
			history := viewmodel.NewHistoryModel(a.session, a.history, a.historyCache())
			drive(history.Update, history.Refresh())
			if history.Err != "" {
				return errors.New(history.Err)
			}
			record, ok := history.Find(id)
			if !ok {
				return fmt.Errorf("completed challenge %d not found", id)
			}

			detail := viewmodel.NewLastChallengeModel(record)
			width := textfmt.TerminalWidth(os.Stdout)
			lines := []string{record.Title, detail.DateRangeText(), ""}
			lines = append(lines, textfmt.Wrap(record.Description, width)...)
			lines = append(lines, "", "내 회고")
			if strings.TrimSpace(record.Retrospection) == "" {
				lines = append(lines, "아직 회고가 작성되지 않았습니다")
			} else {
				lines = append(lines, textfmt.Wrap(record.Retrospection, width)...)
			}
			lines = append(lines, "", "응원 메시지")
			lines = append(lines, textfmt.Wrap(strings.TrimSpace(record.Assessment), width)...)
			if showShare {
				drive(detail.Update, detail.Share())
				lines = append(lines, "", detail.Notice)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return err
		},
	}
	showCmd.Flags().BoolVar(&showShare, "share", false, "copy the share message to the clipboard")
	return showCmd
}

func newNewCmd() *cobra.Command {
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new challenge today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			challenges := viewmodel.NewChallengesModel(a.session, a.challenges, a.challengeCache())
			form := viewmodel.NewNewChallengeModel(a.session, a.challenges, nowFunc())
			form.Title = newTitle
			form.Description = newDescription
			form.Period = newDays
			submit, err := form.Submit()
			if errors.Is(err, viewmodel.ErrInvalidForm) {
				return fmt.Errorf("title, description and a period of at least one day are required")
			}
			if err != nil {
				return err
			}
			drive(challenges.Update, submit)
			if challenges.Notice != "" {
				return errors.New(challenges.Notice)
			}
			out := cmd.OutOrStdout()
			if challenges.Err != "" {
				_, err = fmt.Fprintf(out, "'%s' 도전을 시작했습니다 (목록을 불러오지 못했습니다: %s)\n", newTitle, challenges.Err)
				return err
			}
			_, err = fmt.Fprintf(out, "'%s' 도전을 시작했습니다 (진행 중 %d개)\n", newTitle, len(challenges.Challenges))
			return err
		},
	}
	newCmd.Flags().StringVar(&newTitle, "title", "", "challenge title")
	newCmd.Flags().StringVar(&newDescription, "description", "", "challenge description")
	newCmd.Flags().StringVar(&newDays, "days", "", "target period in days")
	return newCmd
}

func newPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <id>",
		Short: "Give up an active challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			challenges, err := loadChallenges(a)
			if err != nil {
				return err
			}
			ch, err := findChallenge(challenges, args[0])
			if err != nil {
				return err
			}
			challenges.RequestPause(ch)
			drive(challenges.Update, challenges.ConfirmPause())
			if challenges.Notice != "" {
				return errors.New(challenges.Notice)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "'%s' 도전을 포기했습니다\n", ch.Title)
			return err
		},
	}
}

func newCompleteCmd() *cobra.Command {
	completeCmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Finish a challenge with a retrospection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			challenges, err := loadChallenges(a)
			if err != nil {
				return err
			}
			ch, err := findChallenge(challenges, args[0])
			if err != nil {
				return err
			}
			if !challenges.SelectForCompletion(ch.ID) {
				return fmt.Errorf("challenge %d cannot be completed", ch.ID)
			}
			completion := viewmodel.NewCompletionModel(a.session, *challenges.Completing, a.history, challenges)
			completion.Retrospection = completeRetrospection
			submit, err := completion.Submit()
			if err != nil {
				return errors.New(completion.Err)
			}
			drive(completion.Update, submit)
			if !completion.ShowSuccess {
				return errors.New(completion.Err)
			}
			drive(challenges.Update, completion.ConfirmSuccess())

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "100%% 완료! %s\n%s\n\n%s\n",
				ch.Title, completion.Record.DateRangeText(), strings.TrimSpace(completion.Assessment))
			return err
		},
	}
	completeCmd.Flags().StringVar(&completeRetrospection, "retrospection", "", "what you learned from the challenge")
	return completeCmd
}

func loadChallenges(a *app) (*viewmodel.ChallengesModel, error) {
	challenges := viewmodel.NewChallengesModel(a.session, a.challenges, a.challengeCache())
	drive(challenges.Update, challenges.Refresh())
	if challenges.Err != "" {
		return nil, errors.New(challenges.Err)
	}
	return challenges, nil
}

func findChallenge(challenges *viewmodel.ChallengesModel, arg string) (model.Challenge, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return model.Challenge{}, fmt.Errorf("invalid challenge id %q", arg)
	}
	for _, ch := range challenges.Challenges {
		if ch.ID == id {
			return ch, nil
		}
	}
	return model.Challenge{}, fmt.Errorf("challenge %d not found", id)
}

func printTable(cmd *cobra.Command, headers []string, rows [][]string, rightAlign map[int]bool) error {
	width := textfmt.TerminalWidth(os.Stdout)
	for _, line := range textfmt.Table(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), textfmt.Truncate(line, width)); err != nil {
			return err
		}
	}
	return nil
}
