package view

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/compta/internal/piece"
)

// PieceSelectedMsg is emitted once the user has identified the piece to edit.
type PieceSelectedMsg struct {
	Key piece.Key
}

// PieceKeyModel asks for the client, fiscal period, journal and reference of
// the piece to open. A reference with no lines yet opens an empty piece.
type PieceKeyModel struct {
	CommonModel
	form *huh.Form

	// Form bindings live behind a pointer so copies of the model share them.
	fields *pieceKeyFields
}

type pieceKeyFields struct {
	clientID   string
	exerciceID string
	journal    string
	pieceRef   string
}

func NewPieceKeyModel(last piece.Key) PieceKeyModel {
	f := &pieceKeyFields{
		journal:  last.Journal,
		pieceRef: last.PieceRef,
	}

	if last.ClientID != 0 {
		f.clientID = strconv.FormatInt(last.ClientID, 10)
	}

	if last.ExerciceID != 0 {
		f.exerciceID = strconv.FormatInt(last.ExerciceID, 10)
	}

	return PieceKeyModel{form: buildKeyForm(f), fields: f}
}

func (m PieceKeyModel) Title() string { return "Open Piece" }

func (m PieceKeyModel) ShortHelp() string { return "Esc: back | Enter/Tab: navigate form" }

func (m PieceKeyModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m PieceKeyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	case tea.WindowSizeMsg:
		m.SetSize(msg)
		m.form = m.form.WithWidth(min(keyFormWidth, max(msg.Width-4, 20)))

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	key := m.key()

	return m, func() tea.Msg { return PieceSelectedMsg{Key: key} }
}

func (m PieceKeyModel) View() string {
	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(m.Title()),
			"",
			m.form.View(),
		),
	)
}

const keyFormWidth = 45

func buildKeyForm(f *pieceKeyFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("client").
				Title("Client ID").
				Value(&f.clientID).
				Validate(validateID),

			huh.NewInput().
				Key("exercice").
				Title("Exercice ID").
				Value(&f.exerciceID).
				Validate(validateID),

			huh.NewInput().
				Key("journal").
				Title("Journal").
				Placeholder("AC").
				Value(&f.journal).
				Validate(required("journal")),

			huh.NewInput().
				Key("piece_ref").
				Title("Piece reference").
				Placeholder("F-0001").
				Value(&f.pieceRef).
				Validate(required("piece reference")),
		),
	).WithWidth(keyFormWidth).WithShowHelp(false)
}

func (m PieceKeyModel) key() piece.Key {
	clientID, _ := strconv.ParseInt(strings.TrimSpace(m.fields.clientID), 10, 64)
	exerciceID, _ := strconv.ParseInt(strings.TrimSpace(m.fields.exerciceID), 10, 64)

	return piece.Key{
		ClientID:   clientID,
		ExerciceID: exerciceID,
		Journal:    strings.TrimSpace(m.fields.journal),
		PieceRef:   strings.TrimSpace(m.fields.pieceRef),
	}
}

func validateID(s string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("must be a positive number")
	}

	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}

		return nil
	}
}
