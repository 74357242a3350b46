// Package colors provides ANSI color codes and small formatting helpers
// for the terminal menus.
package colors

const (
	Red     = "\033[91m"
	Green   = "\033[92m"
	Yellow  = "\033[93m"
	Blue    = "\033[94m"
	Magenta = "\033[95m"
	Cyan    = "\033[96m"
	White   = "\033[97m"

	Bold = "\033[1m"
	Dim  = "\033[2m"

	Reset = "\033[0m"
)

// Colorize wraps text in a color code and resets afterwards.
func Colorize(text, color string) string {
	return color + text + Reset
}

// Success renders green text.
func Success(text string) string { return Colorize(text, Green) }

// Error renders red text.
func Error(text string) string { return Colorize(text, Red) }

// Warning renders yellow text.
func Warning(text string) string { return Colorize(text, Yellow) }

// Info renders cyan text.
func Info(text string) string { return Colorize(text, Cyan) }

// Title renders bold yellow text.
func Title(text string) string { return Colorize(text, Yellow+Bold) }

// Border renders bold cyan text.
func Border(text string) string { return Colorize(text, Cyan+Bold) }

// Prompt renders bold cyan text for input prompts.
func Prompt(text string) string { return Colorize(text, Cyan+Bold) }
