package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Hussein-Mazeh/TaskTracker/internal/colors"
)

// promptPassword reads a password without echoing it to the terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pw)), nil
}

// readLine reads one trimmed line of input after printing a prompt.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// pause waits for Enter so output stays on screen before the next menu.
func (a *app) pause() {
	fmt.Print("Press Enter to continue...")
	_, _ = a.in.ReadString('\n')
}

func clearScreen() {
	fmt.Print("\033[2J\033[H")
}

// cliPrompter drives the login retry loop from the terminal.
type cliPrompter struct {
	app *app
}

func (p *cliPrompter) ReadPassword() (string, error) {
	return promptPassword(colors.Prompt("Password: "))
}

func (p *cliPrompter) RetryAfterFailure(failures, maxAttempts int) bool {
	fmt.Println(colors.Error("\nInvalid password."))
	fmt.Println(colors.Warning(fmt.Sprintf("Attempt %d of %d.", failures, maxAttempts)))
	answer, err := p.app.readLine(colors.Prompt("Try again? (y/n): "))
	if err != nil {
		return false
	}
	return strings.EqualFold(answer, "y")
}
