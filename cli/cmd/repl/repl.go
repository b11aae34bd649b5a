package repl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/identstr/cli/render"
	"github.com/ardnew/identstr/lang"
	"github.com/ardnew/identstr/log"
	"github.com/ardnew/identstr/token"
)

// editedMsg carries the text returned from the external editor.
type editedMsg struct{ text string }

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

const (
	expandPrompt = "➜ "
	ctrlPrompt   = " :"

	// replFile names the input in diagnostics.
	replFile = "<repl>"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this cruft
  list     List the placeholders of the last expansion
  edit     Edit the last input in external $EDITOR
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type the input of an invocation to expand it:
    #name = "foo", #get = concat!("get_", "foo") => fn #get() {}
  or source text containing ` + lang.Name + `! { ... } invocations
  Completions appear automatically as you type; '#' lists placeholders
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between expand and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeExpand inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// invocationPattern detects input that is source text rather than the input
// of a single invocation.
var invocationPattern = regexp.MustCompile(`\b` + lang.Name + `\s*!`)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	styles       render.Styles
	opts         []lang.Option
	logger       log.Logger
	history      *History
	bindings     lang.Bindings // from the last expansion
	lastInput    string
	matches      fuzzy.Matches
	candidates   []string
	historyIdx   int
	wordStart    int
	wordEnd      int
	suggIdx      int
	preTabCursor int
	width        int
	preTabText   string
	expandText   string
	expandCursor int
	ctrlText     string
	ctrlCursor   int
	mode         inputMode
	tabActive    bool
	quitting     bool
}

// Run starts the REPL. History is kept in cacheDir when it is not empty.
// The options are applied to every expansion.
func Run(
	ctx context.Context,
	cacheDir string,
	logger log.Logger,
	opts ...lang.Option,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start", slog.String("cache_dir", cacheDir))

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()))

	m := newModel(ctx, history, logger, opts...)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	history *History,
	logger log.Logger,
	opts ...lang.Option,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(expandPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		styles:     render.NewStyles(lipgloss.DefaultRenderer()),
		opts:       append([]lang.Option{lang.WithLogger(logger)}, opts...),
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeExpand,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(expandPrompt) - 2

		return m, nil

	case editedMsg:
		if msg.text == "" {
			return m, tea.Println(hintStyle.Render("edit cancelled"))
		}

		return m.expand(msg.text)

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type #name = value, ... => body or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: help, list, edit, clear, quit (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeExpand {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeExpand), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.Type == tea.KeySpace {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, msg.Type == tea.KeyRunes)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the selected candidate by step, completing the word at the
// cursor with it. A sole candidate is completed and confirmed at once.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with
// replacement and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the fuzzy matches for the current input. With
// autoConfirm, a sole candidate equal to the typed word is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.matches[0].Str == m.input.Value()[m.wordStart:m.wordEnd] {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.expandText, m.expandCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command",
			slog.String("input", input))

		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl expand",
		slog.String("input", input))

	return m.expand(input)
}

// expand echoes input and prints its expansion.
func (m model) expand(input string) (model, tea.Cmd) {
	echo := tea.Println(promptStyle.Render(expandPrompt) + inputStyle.Render(input))

	result, bindings := evaluate(m.ctxFunc(), input, m.styles, m.opts...)

	m.lastInput = input
	if bindings != nil {
		m.bindings = bindings
	}

	return m, tea.Sequence(echo, tea.Println(result))
}

// evaluate expands input and returns the styled output followed by the
// rendered diagnostics. Input containing an invocation is expanded as
// source text; any other input as the input of one invocation, whose
// bindings are also returned.
func evaluate(
	ctx context.Context,
	input string,
	styles render.Styles,
	opts ...lang.Option,
) (string, lang.Bindings) {
	var (
		output   string
		diags    lang.Diagnostics
		bindings lang.Bindings
	)

	if invocationPattern.MatchString(input) {
		out, err := lang.ExpandSource(ctx, replFile, input, opts...)
		if err != nil {
			return errorStyle.Render("error: " + err.Error()), nil
		}

		output, diags = out.Output, out.Diagnostics
	} else {
		x, err := lang.ExpandString(ctx, replFile, input, opts...)
		if err != nil {
			return errorStyle.Render("error: " + err.Error()), nil
		}

		output, diags, bindings = token.Layout(x.Body, input), x.Diagnostics, x.Bindings
	}

	var b strings.Builder

	if output != "" {
		b.WriteString(resultStyle.Render(output))
	}

	for _, d := range diags {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}

		b.WriteString(strings.TrimSuffix(render.Diagnostic(styles, input, d), "\n"))
	}

	return b.String(), bindings
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(listBindings(m.bindings)))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"),
		)
	}
}

// edit opens the last input in the external editor.
func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
		text:    m.lastInput,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if err != nil {
			return editErrorMsg{err: err}
		}

		return editedMsg{text: cmd.result}
	})
}

// listBindings formats each placeholder of b with the identifier it stands
// for.
func listBindings(b lang.Bindings) string {
	if len(b) == 0 {
		return hintStyle.Render("  no placeholders")
	}

	var sb strings.Builder

	for i, name := range b.Names() {
		if i > 0 {
			sb.WriteByte('\n')
		}

		ident := b[name].Ident
		if b[name].Absent {
			ident = hintStyle.Render("None")
		}

		fmt.Fprintf(&sb, "  #%s %s %s", name, hintStyle.Render("→"), ident)
	}

	return sb.String()
}

// historyStep moves through the history by step. Entries of the other mode
// switch the mode, or are skipped when sameMode is set. Stepping past the
// newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if m.mode != entry.Mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, keeping the input of each mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeExpand {
		m.expandText, m.expandCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeExpand {
		m.input.Prompt = promptStyle.Render(expandPrompt)
		m.input.SetValue(m.expandText)
		m.input.SetCursor(m.expandCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
