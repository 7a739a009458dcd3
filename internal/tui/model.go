package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"statekeep/internal/logging"
	"statekeep/internal/report"
	"statekeep/internal/template"
)

// templateInfo is the summary of one loadable template document
type templateInfo struct {
	Name    string
	Version int
	Scope   string
	Rules   int
	Err     string
}

// Model represents the TUI application state
type Model struct {
	logger      *logging.Logger
	templateDir string
	quitting    bool

	currentScreen Screen
	selection     int
	lastError     string

	templates  []templateInfo
	lastResult *report.Result
}

// NewModel creates a new TUI model
func NewModel(logger *logging.Logger, templateDir string, lastResult *report.Result) Model {
	m := Model{
		logger:        logger,
		templateDir:   templateDir,
		currentScreen: ScreenMenu,
		lastResult:    lastResult,
	}
	m = m.loadTemplates()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := keyMsg.String(); key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		return m.returnToMenu(), nil
	case "up", "k":
		if m.currentScreen == ScreenMenu {
			return m.navigateUp(), nil
		}
	case "down", "j":
		if m.currentScreen == ScreenMenu {
			return m.navigateDown(), nil
		}
	case "enter", " ":
		if m.currentScreen == ScreenMenu {
			return m.selectMenuItem(), nil
		}
	case "r":
		if m.currentScreen == ScreenTemplates {
			return m.loadTemplates(), nil
		}
	default:
		if m.currentScreen == ScreenMenu {
			return m.selectMenuByKey(key), nil
		}
	}

	return m, nil
}

// View renders the current screen
func (m Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	switch m.currentScreen {
	case ScreenTemplates:
		return m.renderTemplatesScreen()
	case ScreenReport:
		return m.renderReportScreen()
	case ScreenHelp:
		return m.renderHelpScreen()
	default:
		return m.renderMenu()
	}
}

// loadTemplates refreshes the template summaries from the template directory
func (m Model) loadTemplates() Model {
	m.templates = nil
	m.lastError = ""

	files, err := template.ListDir(m.templateDir)
	if err != nil {
		m.lastError = err.Error()
		return m
	}

	for _, file := range files {
		tpl, err := template.LoadFile(file)
		if err != nil {
			m.templates = append(m.templates, templateInfo{
				Name: file,
				Err:  fmt.Sprintf("invalid: %v", err),
			})
			continue
		}
		m.templates = append(m.templates, templateInfo{
			Name:    tpl.Name,
			Version: tpl.Version,
			Scope:   tpl.Scope.String(),
			Rules:   len(tpl.Rules),
		})
	}

	return m
}

// navigateUp moves selection up in the menu
func (m Model) navigateUp() Model {
	if m.selection > 0 {
		m.selection--
	} else {
		m.selection = len(DefaultMenuItems()) - 1
	}
	return m
}

// navigateDown moves selection down in the menu
func (m Model) navigateDown() Model {
	if m.selection < len(DefaultMenuItems())-1 {
		m.selection++
	} else {
		m.selection = 0
	}
	return m
}

// selectMenuItem handles menu item selection
func (m Model) selectMenuItem() Model {
	items := DefaultMenuItems()
	if m.selection >= 0 && m.selection < len(items) {
		m.currentScreen = items[m.selection].Screen
		m.lastError = ""
	}
	return m
}

// selectMenuByKey handles direct menu selection by key press
func (m Model) selectMenuByKey(key string) Model {
	for i, item := range DefaultMenuItems() {
		if item.Key == key {
			m.selection = i
			m.currentScreen = item.Screen
			m.lastError = ""
			break
		}
	}
	return m
}

// returnToMenu returns to the main menu
func (m Model) returnToMenu() Model {
	m.currentScreen = ScreenMenu
	m.lastError = ""
	return m
}
