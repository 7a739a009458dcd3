package tui

// Screen represents different TUI screens
type Screen string

const (
	// ScreenMenu is the main menu screen
	ScreenMenu Screen = "menu"
	// ScreenTemplates lists the available templates
	ScreenTemplates Screen = "templates"
	// ScreenReport shows the last operation result
	ScreenReport Screen = "report"
	// ScreenHelp shows help overlay
	ScreenHelp Screen = "help"
)

// MenuItem represents a menu item
type MenuItem struct {
	Key         string // Number key or letter
	Label       string // Display label
	Description string // Short description
	Screen      Screen // Target screen
}

// DefaultMenuItems returns the default main menu items
func DefaultMenuItems() []MenuItem {
	return []MenuItem{
		{Key: "1", Label: "Templates", Description: "List backup templates", Screen: ScreenTemplates},
		{Key: "2", Label: "Last Report", Description: "Show the most recent operation result", Screen: ScreenReport},
		{Key: "?", Label: "Help", Description: "Show help", Screen: ScreenHelp},
	}
}
