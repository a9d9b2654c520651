package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/services"
	"github.com/desertthunder/raccclo/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SubscriptionListView ViewState = iota
	MultiredditListView
	ConfirmView
	CloneView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	source       services.Service
	dest         services.Service
	engine       *tasks.AccountEngine
	width        int
	height       int
	subList      list.Model
	multiList    list.Model
	export       *models.AccountExport
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.CloneRunResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, source, dest services.Service, engine *tasks.AccountEngine) *Model {
	return &Model{
		ctx:    ctx,
		view:   SubscriptionListView,
		source: source,
		dest:   dest,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the source account snapshot.
func (m *Model) Init() tea.Cmd {
	return m.fetchSnapshot()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.subList.Width() == 0 {
			m.subList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.multiList.Width() == 0 {
			m.multiList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SubscriptionListView:
			return m.handleSubscriptionListKeys(msg)
		case MultiredditListView:
			return m.handleMultiredditListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case snapshotFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.export = msg.export

		subItems := make([]list.Item, len(msg.export.Subreddits))
		for i, sub := range msg.export.Subreddits {
			subItems[i] = subredditItem{subreddit: sub}
		}
		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = false
		m.subList = list.New(subItems, delegate, 0, 0)
		m.subList.Title = fmt.Sprintf("u/%s Subscriptions", msg.export.Account)
		m.subList.SetSize(m.width-4, m.height-8)

		multiItems := make([]list.Item, len(msg.export.Multireddits))
		for i, multi := range msg.export.Multireddits {
			multiItems[i] = multiredditItem{multi: multi}
		}
		m.multiList = list.New(multiItems, list.NewDefaultDelegate(), 0, 0)
		m.multiList.Title = fmt.Sprintf("u/%s Multireddits", msg.export.Account)
		m.multiList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case cloneCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SubscriptionListView:
		return m.renderSubscriptionList()
	case MultiredditListView:
		return m.renderMultiredditList()
	case ConfirmView:
		return m.renderConfirm()
	case CloneView:
		return m.renderClone()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSubscriptionListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if m.export != nil {
			if len(m.export.Multireddits) == 0 {
				m.view = ConfirmView
			} else {
				m.view = MultiredditListView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.subList, cmd = m.subList.Update(msg)
	return m, cmd
}

func (m *Model) handleMultiredditListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SubscriptionListView
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.multiList, cmd = m.multiList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = SubscriptionListView
		return m, nil
	case "y":
		m.view = CloneView
		return m, m.startClone()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = SubscriptionListView
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SubscriptionListView:
		m.subList, cmd = m.subList.Update(msg)
	case MultiredditListView:
		m.multiList, cmd = m.multiList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		export, err := m.engine.Snapshot(m.ctx, nil, m.source)
		return snapshotFetchedMsg{export: export, err: err}
	}
}

func (m *Model) startClone() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Run(m.ctx, m.progressChan)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return cloneCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return cloneCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSubscriptionList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.subList.View(), helpView)
}

func (m *Model) renderMultiredditList() string {
	cloneKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "clone"),
	)
	helpKeys := []key.Binding{cloneKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.multiList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Clone u/%s to u/%s?", m.export.Account, m.dest.Name()))
	info := fmt.Sprintf("\nSubscriptions: %d\nMultireddits: %d\n", len(m.export.Subreddits), len(m.export.Multireddits))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderClone() string {
	title := styles.title.Render("Cloning Account")

	var phase string
	switch m.progress.Phase {
	case tasks.Authenticate:
		phase = "Logging in..."
	case tasks.FetchSubscriptions:
		phase = "Fetching subscriptions..."
	case tasks.FetchMultireddits:
		phase = "Fetching multireddits..."
	case tasks.SubscribeSubreddits:
		phase = fmt.Sprintf("Subscribing (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CreateMultireddits:
		phase = fmt.Sprintf("Creating multireddits (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Archive:
		phase = "Archiving run..."
	default:
		phase = "Processing..."
	}

	hint := styles.help.Render("Rate limited requests are retried automatically")
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, phase, m.progress.Message, hint)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Clone failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Clone Complete!")
	if m.result.DryRun {
		title = styles.ok.Render("✓ Dry Run Complete!")
	}

	s := m.result.Summary
	info := fmt.Sprintf(
		"\nSource: u/%s\nDestination: u/%s\n\nSubreddits: %d created, %d existing, %d failed\nMultireddits: %d created, %d existing, %d failed",
		m.result.SourceAccount, m.result.DestAccount,
		s.Subreddits.Created, s.Subreddits.AlreadyExists, s.Subreddits.Failed,
		s.Multireddits.Created, s.Multireddits.AlreadyExists, s.Multireddits.Failed,
	)

	var failed string
	if s.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("%d items failed:", s.Failed)))
		for _, outcome := range m.result.Failed() {
			label := outcome.Item
			if outcome.Kind == models.KindSubreddit {
				label = "r/" + outcome.Item
			}
			failed += fmt.Sprintf("\n  • %s: %s", label, outcome.Detail)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
