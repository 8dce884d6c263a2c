package main

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/hazyhaar/pacm-search/pkg/api"
	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"github.com/hazyhaar/pacm-search/pkg/fulltext"
)

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query       string `arg:"" help:"Query; wrap it in double quotes for an exact phrase"`
	FullText    bool   `name:"fulltext" short:"f" help:"Also search document text"`
	Occurrences bool   `short:"o" help:"List every occurrence instead of documents"`
	JSON        bool   `name:"json" help:"Print JSON"`
	Limit       int    `short:"n" default:"20" help:"Maximum documents or occurrences printed (0 for all)"`
}

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	opts, err := deps.Config.SearchOptions()
	if err != nil {
		return err
	}
	lib, err := deps.openLibrary()
	if err != nil {
		return err
	}
	corpus, err := lib.Corpus()
	if err != nil {
		return err
	}

	if c.Occurrences {
		res := corpus.SearchOccurrences(c.Query, opts)
		if c.JSON {
			return writeJSON(deps.Stdout, res)
		}
		fmt.Fprintf(deps.Stdout, "%d occurrences (%s)%s\n", res.Total, res.Mode, truncatedNote(res.Truncated))
		for i, o := range res.Occurrences {
			if c.Limit > 0 && i >= c.Limit {
				break
			}
			fmt.Fprintf(deps.Stdout, "%3d. %s  %s\n     %s\n", o.Rank, label(o.Symbol, o.Title), o.ViewURL, plain(o.Snippet))
		}
		return nil
	}

	res := corpus.SearchDocuments(c.Query, c.FullText, opts)
	if c.JSON {
		return writeJSON(deps.Stdout, res)
	}
	fmt.Fprintf(deps.Stdout, "%d documents (%s)%s\n", res.Total, res.Mode, truncatedNote(res.Truncated))
	for i, d := range res.Documents {
		if c.Limit > 0 && i >= c.Limit {
			break
		}
		fmt.Fprintf(deps.Stdout, "%3d. %s  [%d]\n     %s\n", d.Rank, label(d.Symbol, d.Title), d.MatchCount, d.ViewURL)
		for _, s := range d.Snippets {
			fmt.Fprintf(deps.Stdout, "     > %s\n", plain(s))
		}
	}
	return nil
}

// CatalogueCmd is the "catalogue" subcommand.
type CatalogueCmd struct {
	Query string `arg:"" optional:"" help:"Filter on titles and symbols"`
	JSON  bool   `name:"json" help:"Print JSON"`
}

// Run executes the catalogue command.
func (c *CatalogueCmd) Run(deps *Dependencies) error {
	opts, err := deps.Config.SearchOptions()
	if err != nil {
		return err
	}
	lib, err := deps.openLibrary()
	if err != nil {
		return err
	}
	corpus, err := lib.Corpus()
	if err != nil {
		return err
	}

	records := corpus.FilterCatalogue(c.Query, opts)
	if c.JSON {
		return writeJSON(deps.Stdout, records)
	}
	for _, g := range catalog.GroupBySection(records, api.OtherSection) {
		fmt.Fprintf(deps.Stdout, "%s\n", g.Section)
		for _, sub := range g.Subsections {
			indent := "  "
			if sub.Subsection != "" {
				fmt.Fprintf(deps.Stdout, "  %s\n", sub.Subsection)
				indent = "    "
			}
			for _, r := range sub.Records {
				fmt.Fprintf(deps.Stdout, "%s%s  %s\n", indent, label(r.Symbol, r.Title), r.URL)
			}
		}
	}
	fmt.Fprintf(deps.Stdout, "%d records\n", len(records))
	return nil
}

func label(symbol, title string) string {
	if symbol == "" {
		return title
	}
	return symbol + "  " + title
}

// plain turns a snippet back into terminal text, with matches in brackets.
func plain(snippet string) string {
	s := strings.NewReplacer(fulltext.MarkOpen, "[", fulltext.MarkClose, "]").Replace(snippet)
	return html.UnescapeString(s)
}

func truncatedNote(truncated bool) string {
	if truncated {
		return ", truncated"
	}
	return ""
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
