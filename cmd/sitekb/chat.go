package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/xhad/sitekb/internal/models"
)

// Run executes the chat command.
func (c *ChatCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.Store != "" {
		cfg.Store.Path = c.Store
	}
	if err := checkConfig(deps.Stderr, cfg.ValidateForServe()); err != nil {
		return err
	}

	s := loadStore(deps.Ctx, deps, false)
	r, err := newRetriever(deps, s, true)
	if err != nil {
		return err
	}

	replyColor.Fprintf(deps.Stdout, "\nChat with %d indexed chunks (type 'exit' to quit)\n", s.Len())

	var history []models.Turn
	scanner := bufio.NewScanner(deps.Stdin)
	for {
		userColor.Fprint(deps.Stdout, "\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if q := strings.ToLower(query); q == "exit" || q == "quit" {
			break
		}

		spinner := getSpinner(deps.Stderr, "Thinking...")
		reply, err := r.Answer(deps.Ctx, models.ChatRequest{Message: query, History: history})
		spinner.Finish()
		fmt.Fprint(deps.Stderr, "\r")

		if err != nil {
			errorColor.Fprintf(deps.Stdout, "Error: %v\n", err)
			continue
		}

		replyColor.Fprintf(deps.Stdout, "Assistant: %s\n", reply)
		history = append(history, models.Turn{User: query, Assistant: reply})
	}

	return scanner.Err()
}
