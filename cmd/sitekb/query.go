package main

import (
	"fmt"

	"github.com/xhad/sitekb/pkg/retriever"
)

// Run executes the query command.
func (c *QueryCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.Store != "" {
		cfg.Store.Path = c.Store
	}
	if c.TopK > 0 {
		cfg.Retrieval.TopK = c.TopK
	}
	if err := checkConfig(deps.Stderr, cfg.ValidateForServe()); err != nil {
		return err
	}

	s := loadStore(deps.Ctx, deps, false)
	r, err := newRetriever(deps, s, false)
	if err != nil {
		return err
	}

	matches, err := r.Search(deps.Ctx, c.Question)
	if err != nil {
		errorColor.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(deps.Stderr, "no matching context")
		return nil
	}

	if !c.Scores {
		fmt.Fprintln(deps.Stdout, retriever.AssembleContext(matches))
		return nil
	}

	for i, m := range matches {
		fmt.Fprintf(deps.Stdout, "%d. %.4f  %s\n", i+1, m.Score, m.Record.URL)
	}
	fmt.Fprintln(deps.Stdout, "\nSources:")
	for _, src := range retriever.Sources(matches) {
		fmt.Fprintf(deps.Stdout, "  %s\n", src)
	}
	return nil
}
