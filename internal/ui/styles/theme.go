package styles

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tkrm/internal/models"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
	Cursor      lipgloss.Color

	// Role badges in the header and user lists
	RoleAdmin    lipgloss.Color
	RoleManager  lipgloss.Color
	RoleEmployee lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7aa2f7"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
	Cursor:      lipgloss.Color("#c0caf5"),

	RoleAdmin:    lipgloss.Color("#f7768e"),
	RoleManager:  lipgloss.Color("#bb9af7"),
	RoleEmployee: lipgloss.Color("#73daca"),
}

// TokyoDay is the light variant for bright terminals
var TokyoDay = Theme{
	Name: "Tokyo Day",

	Background:    lipgloss.Color("#e1e2e7"),
	Foreground:    lipgloss.Color("#3760bf"),
	ForegroundDim: lipgloss.Color("#848cb5"),

	Primary:   lipgloss.Color("#2e7de9"),
	Secondary: lipgloss.Color("#9854f1"),
	Accent:    lipgloss.Color("#007197"),

	Success: lipgloss.Color("#587539"),
	Warning: lipgloss.Color("#8c6c3e"),
	Error:   lipgloss.Color("#f52a65"),
	Info:    lipgloss.Color("#2e7de9"),

	Border:      lipgloss.Color("#a8aecb"),
	BorderFocus: lipgloss.Color("#2e7de9"),
	Selection:   lipgloss.Color("#b7c1e3"),
	Cursor:      lipgloss.Color("#3760bf"),

	RoleAdmin:    lipgloss.Color("#f52a65"),
	RoleManager:  lipgloss.Color("#9854f1"),
	RoleEmployee: lipgloss.Color("#118c74"),
}

// Themes maps config names to themes
var Themes = map[string]Theme{
	"tokyo-night": TokyoNight,
	"tokyo-day":   TokyoDay,
}

// Current holds the active theme
var Current = TokyoNight

// Use selects the theme for styles created afterwards
func Use(name string) error {
	t, ok := Themes[name]
	if !ok {
		names := make([]string, 0, len(Themes))
		for n := range Themes {
			names = append(names, n)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown theme %q (available: %v)", name, names)
	}
	Current = t
	return nil
}

// MaxWidth is the maximum content width for the app (classic terminal width)
const MaxWidth = 80

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView wraps content and centers it horizontally if terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	// Header with navigation
	Header    lipgloss.Style
	NavItem   lipgloss.Style
	NavActive lipgloss.Style
	User      lipgloss.Style

	Title      lipgloss.Style
	TitleMuted lipgloss.Style
	Section    lipgloss.Style

	// Lists
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	Box          lipgloss.Style

	// Buttons
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style
	ButtonDanger  lipgloss.Style

	// Input fields
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Label        lipgloss.Style
	FieldError   lipgloss.Style

	// Task state
	Ongoing   lipgloss.Style
	Completed lipgloss.Style
	Meta      lipgloss.Style

	// Notices
	NoticeError   lipgloss.Style
	NoticeSuccess lipgloss.Style

	// Calendar
	Day          lipgloss.Style
	DayToday     lipgloss.Style
	DaySelected  lipgloss.Style
	MarkPending  lipgloss.Style
	MarkComplete lipgloss.Style

	// Help text
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// Priority returns the style for a priority label
func (s *Styles) Priority(p models.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch p {
	case models.PriorityHigh:
		return base.Foreground(Current.Error)
	case models.PriorityMedium:
		return base.Foreground(Current.Warning)
	}
	return base.Foreground(Current.Info)
}

// Role returns the badge style for a role
func (s *Styles) Role(r models.Role) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch r {
	case models.RoleAdmin:
		return base.Foreground(Current.RoleAdmin)
	case models.RoleManager:
		return base.Foreground(Current.RoleManager)
	}
	return base.Foreground(Current.RoleEmployee)
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),

		NavItem: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		NavActive: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 1).
			Bold(true),

		User: lipgloss.NewStyle().
			Foreground(t.Secondary),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Section: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true).
			MarginTop(1),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),

		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		Box: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		Button: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Foreground(t.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),

		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		ButtonDanger: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Error).
			Padding(0, 2).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Label: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Bold(true),

		FieldError: lipgloss.NewStyle().
			Foreground(t.Error),

		Ongoing: lipgloss.NewStyle().
			Foreground(t.Warning),

		Completed: lipgloss.NewStyle().
			Foreground(t.Success),

		Meta: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Italic(true),

		NoticeError: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Error).
			Padding(0, 1),

		NoticeSuccess: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Success).
			Padding(0, 1),

		Day: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Width(4).
			Align(lipgloss.Right),

		DayToday: lipgloss.NewStyle().
			Foreground(t.Accent).
			Width(4).
			Align(lipgloss.Right).
			Bold(true),

		DaySelected: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Width(4).
			Align(lipgloss.Right).
			Bold(true),

		MarkPending: lipgloss.NewStyle().
			Foreground(t.Warning),

		MarkComplete: lipgloss.NewStyle().
			Foreground(t.Success),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 2),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),
	}
}
