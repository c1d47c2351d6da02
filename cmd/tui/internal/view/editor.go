package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/compta/internal/amount"
	"github.com/MrJamesThe3rd/compta/internal/export"
	"github.com/MrJamesThe3rd/compta/internal/importer"
	"github.com/MrJamesThe3rd/compta/internal/piece"
)

type editorState int

const (
	editorLoading editorState = iota
	editorBrowse
	editorEdit
	editorPrompt
	editorSubmitting
)

type promptKind int

const (
	promptImport promptKind = iota
	promptExport
	promptDescription
)

type field int

const (
	fieldDate field = iota
	fieldAccNum
	fieldAccLib
	fieldLib
	fieldDebit
	fieldCredit
	fieldCount
)

var fieldTitles = [fieldCount]string{"Date", "Account", "Account label", "Description", "Debit", "Credit"}

const commitTimeout = 30 * time.Second

type EditorConfig struct {
	LookupDelay  time.Duration
	SuggestLimit int
	Currency     string
}

// EditorModel edits the lines of one piece and submits the resulting change
// list. The session is only touched from Update; account lookups reach it
// through accountResultMsg.
type EditorModel struct {
	CommonModel
	pieceService *piece.Service
	accounts     piece.AccountDirectory
	parser       *importer.Parser
	exporter     *export.Service
	cfg          EditorConfig

	key     piece.Key
	sess    *piece.Session
	results chan piece.AccountResult
	done    chan struct{}

	state      editorState
	table      table.Model
	inputs     []textinput.Model
	focus      field
	editing    string
	pick       int
	prompt     textinput.Model
	promptKind promptKind

	status string
	err    error
}

func NewEditorModel(
	pieceSvc *piece.Service,
	accounts piece.AccountDirectory,
	parser *importer.Parser,
	exporter *export.Service,
	cfg EditorConfig,
	key piece.Key,
) EditorModel {
	columns := []table.Column{
		{Title: " ", Width: 1},
		{Title: "Date", Width: 10},
		{Title: "Account", Width: 10},
		{Title: "Label", Width: 22},
		{Title: "Description", Width: 26},
		{Title: "Debit", Width: 12},
		{Title: "Credit", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 30
		inputs[i] = ti
	}

	inputs[fieldDate].Placeholder = "YYYY-MM-DD"
	inputs[fieldDebit].Placeholder = "0,00"
	inputs[fieldCredit].Placeholder = "0,00"

	prompt := textinput.New()
	prompt.Width = 50

	return EditorModel{
		pieceService: pieceSvc,
		accounts:     accounts,
		parser:       parser,
		exporter:     exporter,
		cfg:          cfg,
		key:          key,
		table:        t,
		inputs:       inputs,
		prompt:       prompt,
	}
}

func (m EditorModel) Title() string {
	return fmt.Sprintf("Piece %s / %s", m.key.Journal, m.key.PieceRef)
}

func (m EditorModel) ShortHelp() string {
	switch m.state {
	case editorLoading:
		return "Esc: back"
	case editorBrowse:
		return "Esc: back | ctrl+n: add | Enter: edit | d: delete | u: undo | i: import | x: export | r: reload | ctrl+s: submit"
	case editorEdit:
		return "Esc/Enter: done | Tab: next field | ↑/↓ + ctrl+p: pick account"
	case editorPrompt:
		return "Esc: cancel | Enter: confirm"
	case editorSubmitting:
		return "Saving..."
	}

	return ""
}

func (m EditorModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pieceLoadedMsg:
		return m.onLoaded(msg)

	case accountResultMsg:
		if m.sess == nil {
			return m, nil
		}

		m.sess.ApplyAccountResult(msg.res)

		if m.state == editorEdit && m.editing == msg.res.UID {
			if row := m.sess.Row(m.editing); row != nil {
				m.inputs[fieldAccLib].SetValue(row.AccLib)
			}

			m.pick = 0
		}

		m.refreshTable()

		return m, waitForAccount(m.results, m.done)

	case commitMsg:
		return m.onCommitted(msg)

	case reloadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Reload failed: %v", msg.err)
			return m, nil
		}

		m.sess.Reset(msg.entries)
		m.status = "Piece reloaded."
		m.refreshTable()

		return m, nil

	case importMsg:
		return m.onImported(msg)

	case exportMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Exported %d stored lines to %s.", msg.count, msg.path)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.SetSize(msg)
		m.table.SetHeight(max(m.Height-18, 5))

		return m, nil
	}

	switch m.state {
	case editorLoading:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	case editorBrowse:
		return m.updateBrowse(msg)
	case editorEdit:
		return m.updateEdit(msg)
	case editorPrompt:
		return m.updatePrompt(msg)
	}

	return m, nil
}

func (m EditorModel) onLoaded(msg pieceLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	results := make(chan piece.AccountResult, 16)
	done := make(chan struct{})

	msg.sess.AttachLookups(piece.NewAccountLookups(
		m.accounts,
		m.key.ClientID,
		piece.LookupConfig{Delay: m.cfg.LookupDelay, Limit: m.cfg.SuggestLimit},
		func(res piece.AccountResult) {
			select {
			case results <- res:
			case <-done:
			}
		},
	))

	m.sess = msg.sess
	m.results = results
	m.done = done
	m.state = editorBrowse
	m.refreshTable()

	if len(m.sess.Rows()) == 0 {
		m.status = "New piece: press ctrl+n to add a line."
	}

	return m, waitForAccount(results, done)
}

func (m EditorModel) onCommitted(msg commitMsg) (tea.Model, tea.Cmd) {
	m.state = editorBrowse
	m.table.Focus()

	switch {
	case msg.err != nil && msg.res == nil:
		m.status = fmt.Sprintf("Submit failed: %v", msg.err)
	case msg.err != nil:
		m.status = fmt.Sprintf("Saved, but reload failed: %v. Press r before editing further.", msg.err)
	default:
		m.sess.Reset(msg.entries)
		m.status = fmt.Sprintf("Saved: %d added, %d modified, %d deleted.", msg.res.Added, msg.res.Modified, msg.res.Deleted)
	}

	m.refreshTable()

	return m, nil
}

func (m EditorModel) onImported(msg importMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Import failed: %v", msg.err)
		return m, nil
	}

	before := len(m.sess.Rows())
	lines := importer.ForPiece(msg.lines, m.key)
	n := importer.Append(m.sess, lines)

	for _, row := range m.sess.Rows()[before:] {
		m.sess.AccountInput(row.UID, row.AccNum)
	}

	m.status = fmt.Sprintf("Imported %d of %d lines.", n, len(msg.lines))
	if n < len(msg.lines) {
		m.status += " Lines for other pieces were skipped."
	}

	m.refreshTable()

	return m, nil
}

func (m EditorModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			m.Close()
			return m, Back
		case "ctrl+n":
			m.sess.Dispatch(piece.AddRow{Partial: piece.Patch{Journal: &m.key.Journal, PieceRef: &m.key.PieceRef}})
			rows := m.sess.Rows()
			m.refreshTable()
			m.table.SetCursor(len(rows) - 1)

			return m.startEdit(rows[len(rows)-1].UID)
		case "enter":
			row := m.cursorRow()
			if row == nil || row.MarkedDeleted {
				return m, nil
			}

			return m.startEdit(row.UID)
		case "d":
			if row := m.cursorRow(); row != nil {
				m.sess.Dispatch(piece.DeleteRow{UID: row.UID, IsNew: row.IsNew()})
				m.refreshTable()
			}

			return m, nil
		case "u":
			if row := m.cursorRow(); row != nil && row.MarkedDeleted {
				m.sess.Dispatch(piece.UndoDelete{UID: row.UID})
				m.refreshTable()
			}

			return m, nil
		case "i":
			return m.openPrompt(promptImport)
		case "x":
			return m.openPrompt(promptExport)
		case "r":
			return m, m.reloadCmd()
		case "ctrl+s":
			if reason := m.submitBlocker(); reason != "" {
				m.status = reason
				return m, nil
			}

			return m.openPrompt(promptDescription)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m EditorModel) startEdit(uid string) (tea.Model, tea.Cmd) {
	row := m.sess.Row(uid)
	if row == nil {
		return m, nil
	}

	values := [fieldCount]string{row.Date, row.AccNum, row.AccLib, row.Lib, row.Debit, row.Credit}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
	}

	m.editing = uid
	m.focus = fieldDate
	m.pick = 0
	m.state = editorEdit
	m.table.Blur()

	return m, m.focusInput()
}

func (m EditorModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	row := m.sess.Row(m.editing)
	if row == nil {
		return m.stopEdit()
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "enter":
			return m.stopEdit()
		case "tab":
			m.focus = m.nextField(row, 1)
			return m, m.focusInput()
		case "shift+tab":
			m.focus = m.nextField(row, -1)
			return m, m.focusInput()
		case "up":
			if m.pick > 0 {
				m.pick--
			}

			return m, nil
		case "down":
			if m.pick < len(m.sess.Suggestions(m.editing))-1 {
				m.pick++
			}

			return m, nil
		case "ctrl+p":
			suggestions := m.sess.Suggestions(m.editing)
			if m.pick < len(suggestions) {
				sg := suggestions[m.pick]
				m.sess.PickSuggestion(m.editing, sg)
				m.inputs[fieldAccNum].SetValue(sg.AccNum)
				m.inputs[fieldAccLib].SetValue(sg.AccLib)
				m.pick = 0
				m.refreshTable()
			}

			return m, nil
		}
	}

	if m.focus == fieldAccLib && row.AccountExists {
		return m, nil
	}

	var cmd tea.Cmd

	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	if v := m.inputs[m.focus].Value(); v != before {
		m.applyField(m.focus, v)
		m.refreshTable()
	}

	return m, cmd
}

func (m EditorModel) stopEdit() (tea.Model, tea.Cmd) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}

	m.state = editorBrowse
	m.editing = ""
	m.table.Focus()
	m.refreshTable()

	return m, nil
}

func (m *EditorModel) applyField(f field, v string) {
	uid := m.editing

	var p piece.Patch

	switch f {
	case fieldAccNum:
		m.sess.AccountInput(uid, v)
		m.pick = 0

		return
	case fieldDate:
		p.Date = &v
	case fieldAccLib:
		p.AccLib = &v
	case fieldLib:
		p.Lib = &v
	case fieldDebit:
		p.Debit = &v
	case fieldCredit:
		p.Credit = &v
	}

	m.sess.Dispatch(piece.UpdateRow{UID: uid, Patch: p})
}

// nextField moves focus by step, skipping the account label while the
// account exists.
func (m EditorModel) nextField(row *piece.Row, step int) field {
	f := m.focus

	for {
		f = (f + field(step) + fieldCount) % fieldCount
		if f != fieldAccLib || !row.AccountExists {
			return f
		}
	}
}

func (m *EditorModel) focusInput() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}

	return m.inputs[m.focus].Focus()
}

func (m EditorModel) openPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	m.promptKind = kind
	m.prompt.SetValue("")

	switch kind {
	case promptImport:
		m.prompt.Placeholder = "./piece.csv"
	case promptExport:
		m.prompt.SetValue("./exports")
	case promptDescription:
		m.prompt.Placeholder = "Describe this change (optional)"
	}

	m.state = editorPrompt
	m.table.Blur()

	return m, m.prompt.Focus()
}

func (m EditorModel) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.prompt.Blur()
			m.state = editorBrowse
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			value := strings.TrimSpace(m.prompt.Value())
			m.prompt.Blur()

			switch m.promptKind {
			case promptImport, promptExport:
				m.state = editorBrowse
				m.table.Focus()

				if value == "" {
					return m, nil
				}

				if m.promptKind == promptExport {
					return m, m.exportCmd(value)
				}

				return m, m.importCmd(value)
			}

			m.state = editorSubmitting
			m.status = ""

			return m, m.commitCmd(m.sess.CommitRequest(value))
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)

	return m, cmd
}

func (m EditorModel) submitBlocker() string {
	totals := m.sess.Totals()

	switch {
	case len(m.sess.Rows()) == 0:
		return "Add at least one line before submitting."
	case totals.HasAmountErrors:
		return "Some amounts are not valid numbers."
	case totals.BothSidesFilled:
		return "A line carries both a debit and a credit."
	case !totals.IsBalanced:
		return fmt.Sprintf("Piece is not balanced (difference %s).", FormatCents(totals.DiffCents, m.cfg.Currency))
	case !m.sess.CanSubmit():
		return "Piece cannot be submitted."
	}

	return ""
}

// Close releases the session's lookups. The editor must not be used
// afterwards.
func (m *EditorModel) Close() {
	if m.sess != nil {
		m.sess.Close()
	}

	if m.done != nil {
		close(m.done)
		m.done = nil
	}
}

func (m EditorModel) cursorRow() *piece.Row {
	rows := m.sess.Rows()

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(rows) {
		return nil
	}

	return &rows[idx]
}

func (m *EditorModel) refreshTable() {
	rows := m.sess.Rows()

	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			rowMarker(r),
			r.Date,
			accountCell(r),
			r.AccLib,
			r.Lib,
			amountCell(r.Debit),
			amountCell(r.Credit),
		})
	}

	m.table.SetRows(out)

	if c := m.table.Cursor(); c >= len(out) && len(out) > 0 {
		m.table.SetCursor(len(out) - 1)
	}
}

func rowMarker(r piece.Row) string {
	switch {
	case r.MarkedDeleted:
		return "✗"
	case r.IsNew():
		return "+"
	}

	return ""
}

func accountCell(r piece.Row) string {
	if r.AccNum != "" && !r.AccountExists {
		return r.AccNum + "*"
	}

	return r.AccNum
}

func amountCell(raw string) string {
	if strings.TrimSpace(raw) != "" && !amount.IsValid(raw) {
		return "! " + raw
	}

	return raw
}

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

func (m EditorModel) View() string {
	if m.sess == nil {
		if m.err != nil {
			return lipgloss.NewStyle().Padding(2).Render(
				errStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to back)",
			)
		}

		return lipgloss.NewStyle().Padding(2).Render("Loading piece...")
	}

	header := lipgloss.NewStyle().Bold(true).Render(m.Title()) +
		faintStyle.Render(fmt.Sprintf("  client %d · exercice %d · %d pending change(s)",
			m.key.ClientID, m.key.ExerciceID, len(m.sess.Changes())))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView
	if m.state == editorEdit {
		panel := m.viewEditPanel()

		// Narrow terminals get the edit panel below the table.
		if m.Width > 0 && lipgloss.Width(tableView)+lipgloss.Width(panel)+2 > m.Width {
			content = lipgloss.JoinVertical(lipgloss.Left, tableView, panel)
		} else {
			content = lipgloss.JoinHorizontal(lipgloss.Top, tableView, panel)
		}
	}

	parts := []string{header, "", content, m.viewTotals()}

	switch m.state {
	case editorPrompt:
		title := "Import CSV file"

		switch m.promptKind {
		case promptExport:
			title = "Export to directory"
		case promptDescription:
			title = "Submit piece"
		}

		parts = append(parts, "", title+": "+m.prompt.View())
	case editorSubmitting:
		parts = append(parts, "", "Saving piece...")
	}

	if m.status != "" {
		parts = append(parts, "", faintStyle.Render(m.status))
	}

	parts = append(parts, "", faintStyle.Render(m.ShortHelp()))

	return lipgloss.NewStyle().Padding(1).MaxWidth(m.Width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m EditorModel) viewEditPanel() string {
	row := m.sess.Row(m.editing)
	if row == nil {
		return ""
	}

	var b strings.Builder

	for i := range m.inputs {
		f := field(i)

		title := fieldTitles[f]
		if f == fieldAccLib && row.AccountExists {
			title += " (locked)"
		}

		if f == m.focus {
			title = focusStyle.Render("> " + title)
		} else {
			title = "  " + title
		}

		fmt.Fprintf(&b, "%s\n  %s\n", title, m.inputs[i].View())
	}

	if suggestions := m.sess.Suggestions(m.editing); len(suggestions) > 0 {
		b.WriteString("\nAccounts\n")

		for i, sg := range suggestions {
			line := fmt.Sprintf("%s  %s", sg.AccNum, sg.AccLib)
			if i == m.pick {
				line = focusStyle.Render("> " + line)
			} else {
				line = "  " + line
			}

			b.WriteString(line + "\n")
		}
	} else if row.AccNum != "" && !row.AccountExists {
		b.WriteString(faintStyle.Render("\nNew account: it will be created on submit.") + "\n")
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(40).
		Render(b.String())
}

func (m EditorModel) viewTotals() string {
	t := m.sess.Totals()
	cur := m.cfg.Currency

	badge := okStyle.Render("balanced")
	if !t.IsBalanced {
		badge = errStyle.Render("unbalanced")
	}

	line := fmt.Sprintf("Debit %s   Credit %s   Difference %s   %s",
		FormatCents(t.DebitCents, cur),
		FormatCents(t.CreditCents, cur),
		FormatCents(t.DiffCents, cur),
		badge,
	)

	if t.HasAmountErrors {
		line += "   " + errStyle.Render("invalid amounts")
	}

	if t.BothSidesFilled {
		line += "   " + errStyle.Render("debit and credit on one line")
	}

	return line
}

// Messages

type pieceLoadedMsg struct {
	sess *piece.Session
	err  error
}

type accountResultMsg struct {
	res piece.AccountResult
}

type commitMsg struct {
	res     *piece.CommitResult
	entries []*piece.Entry
	err     error
}

type reloadedMsg struct {
	entries []*piece.Entry
	err     error
}

type exportMsg struct {
	path  string
	count int
	err   error
}

type importMsg struct {
	lines []importer.Line
	err   error
}

func (m EditorModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sess, err := m.pieceService.Open(ctx, m.key)

		return pieceLoadedMsg{sess: sess, err: err}
	}
}

func (m EditorModel) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.pieceService.Fetch(ctx, m.key)

		return reloadedMsg{entries: entries, err: err}
	}
}

func (m EditorModel) commitCmd(req piece.CommitRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()

		res, entries, err := m.pieceService.Commit(ctx, req)

		return commitMsg{res: res, entries: entries, err: err}
	}
}

func (m EditorModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importMsg{err: err}
		}
		defer f.Close()

		lines, err := m.parser.Parse(f)

		return importMsg{lines: lines, err: err}
	}
}

func (m EditorModel) exportCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		path, n, err := m.exporter.ExportToDir(ctx, m.key, dir)

		return exportMsg{path: path, count: n, err: err}
	}
}

// waitForAccount blocks until the next lookup result, or returns nothing
// once the editor is closed.
func waitForAccount(results <-chan piece.AccountResult, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case res := <-results:
			return accountResultMsg{res: res}
		case <-done:
			return nil
		}
	}
}
