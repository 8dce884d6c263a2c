package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"gopkg.in/yaml.v3"
)

// AuditCmd is the "audit" subcommand.
type AuditCmd struct {
	Required string `short:"r" type:"existingfile" help:"YAML map of symbol to expected title, overrides the audit section"`
	JSON     bool   `name:"json" help:"Print JSON"`
}

// Run executes the audit command.
func (c *AuditCmd) Run(deps *Dependencies) error {
	required := deps.Config.AuditRequired()
	if c.Required != "" {
		data, err := os.ReadFile(c.Required)
		if err != nil {
			return fmt.Errorf("read required: %w", err)
		}
		required = nil
		if err := yaml.Unmarshal(data, &required); err != nil {
			return fmt.Errorf("parse required %s: %w", c.Required, err)
		}
	}

	lib, err := deps.openLibrary()
	if err != nil {
		return err
	}
	corpus, err := lib.Corpus()
	if err != nil {
		return err
	}

	dedupe, err := deps.Config.DedupeOptions()
	if err != nil {
		return err
	}
	records := corpus.Catalogue()
	report := catalog.Audit(records, required)
	report.Grammars = catalog.CountGrammars(records, dedupe.Canonicalizer)
	if c.JSON {
		if err := writeJSON(deps.Stdout, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(deps.Stdout, "Total: %d\n", report.Total)
		names := make([]string, 0, len(report.Grammars))
		for name := range report.Grammars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(deps.Stdout, "  %s: %d\n", name, report.Grammars[name])
		}
		if len(report.Missing) > 0 {
			fmt.Fprintln(deps.Stdout, "\nMissing required symbols:")
			for _, s := range report.Missing {
				fmt.Fprintf(deps.Stdout, " - %s\n", s)
			}
		}
		if len(report.Mismatched) > 0 {
			fmt.Fprintln(deps.Stdout, "\nTitles needing normalization:")
			for _, m := range report.Mismatched {
				fmt.Fprintf(deps.Stdout, " - %s: found %q, expected %q\n", m.Symbol, m.Found, m.Want)
			}
		}
		if report.OK() {
			fmt.Fprintf(deps.Stdout, "All %d required symbols present with expected titles.\n", len(required))
		}
	}
	if !report.OK() {
		return fmt.Errorf("audit: %d missing, %d mismatched", len(report.Missing), len(report.Mismatched))
	}
	return nil
}
