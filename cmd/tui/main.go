package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/compta/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/compta/internal/account"
	accountStore "github.com/MrJamesThe3rd/compta/internal/account/store"
	"github.com/MrJamesThe3rd/compta/internal/config"
	"github.com/MrJamesThe3rd/compta/internal/database"
	"github.com/MrJamesThe3rd/compta/internal/export"
	"github.com/MrJamesThe3rd/compta/internal/importer"
	"github.com/MrJamesThe3rd/compta/internal/piece"
	pieceStore "github.com/MrJamesThe3rd/compta/internal/piece/store"
)

type model struct {
	appName        string
	pieceService   *piece.Service
	accountService *account.Service
	parser         *importer.Parser
	exportService  *export.Service
	editorCfg      view.EditorConfig

	currentView View
	lastKey     piece.Key
	size        tea.WindowSizeMsg

	keyView    view.PieceKeyModel
	editorView view.EditorModel
}

type View int

const (
	ViewMenu   View = 0
	ViewKey    View = 1
	ViewEditor View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	pieceSvc := piece.NewService(pieceStore.New(db))

	return model{
		appName:        cfg.App.Name,
		pieceService:   pieceSvc,
		accountService: account.NewService(accountStore.New(db)),
		parser:         importer.NewParser(),
		exportService:  export.NewService(pieceSvc),
		editorCfg: view.EditorConfig{
			LookupDelay:  cfg.Editor.LookupDelay,
			SuggestLimit: cfg.Editor.SuggestLimit,
			Currency:     cfg.Editor.Currency,
		},
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.currentView == ViewEditor {
				m.editorView.Close()
			}

			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewKey
				m.keyView = view.NewPieceKeyModel(m.lastKey)

				return m, tea.Batch(m.keyView.Init(), m.replaySize())
			}
		}
	case view.PieceSelectedMsg:
		m.lastKey = msg.Key
		m.currentView = ViewEditor
		m.editorView = view.NewEditorModel(m.pieceService, m.accountService, m.parser, m.exportService, m.editorCfg, msg.Key)

		return m, tea.Batch(m.editorView.Init(), m.replaySize())
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewKey:
		var newModel tea.Model
		newModel, cmd = m.keyView.Update(msg)
		m.keyView = newModel.(view.PieceKeyModel)
	case ViewEditor:
		var newModel tea.Model
		newModel, cmd = m.editorView.Update(msg)
		m.editorView = newModel.(view.EditorModel)
	}

	return m, cmd
}

// replaySize hands the last known terminal size to a freshly opened view.
func (m model) replaySize() tea.Cmd {
	if m.size.Width == 0 {
		return nil
	}

	size := m.size

	return func() tea.Msg { return size }
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Edit a piece\n\n" +
				"q. Quit",
		)
	case ViewKey:
		return m.keyView.View()
	case ViewEditor:
		return m.editorView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
