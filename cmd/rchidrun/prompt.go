package main

import (
	"strings"

	"github.com/chzyer/readline"
)

// terminalPrompter asks questions on the controlling terminal. It blocks
// until the user answers; the confirmation contract has no timeout.
type terminalPrompter struct{}

func (terminalPrompter) Ask(question string) (string, error) {
	rl, err := readline.New(question)
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
