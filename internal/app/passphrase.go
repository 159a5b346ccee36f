package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// EnvPassphrase holds the key passphrase for non-interactive use.
const EnvPassphrase = "NUTRI_PASSPHRASE"

// ErrNoPassphrase is returned when no passphrase is set and stdin is not a terminal.
var ErrNoPassphrase = errors.New("no passphrase: set " + EnvPassphrase + " or run from a terminal")

// ReadPassphrase returns the passphrase from NUTRI_PASSPHRASE, or prompts
// for it on the terminal without echo.
func ReadPassphrase(prompt string) (string, error) {
	if p := os.Getenv(EnvPassphrase); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoPassphrase
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// ReadNewPassphrase is ReadPassphrase with a confirmation prompt when asking
// on the terminal.
func ReadNewPassphrase() (string, error) {
	if p := os.Getenv(EnvPassphrase); p != "" {
		return p, nil
	}

	first, err := ReadPassphrase("New passphrase: ")
	if err != nil {
		return "", err
	}
	second, err := ReadPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passphrases do not match")
	}
	return first, nil
}
