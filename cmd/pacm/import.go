// CLAUDE:SUMMARY import, sources and check commands: run adapters into the data directory and manage the feed source registry.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/importer"
)

func openSources(cfg *Config) (*importer.SourceDB, error) {
	sdb, err := importer.OpenSourceDB(cfg.SourcesDB)
	if err != nil {
		return nil, fmt.Errorf("open sources db: %w", err)
	}
	if err := sdb.Seed(importer.All()); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("seed sources: %w", err)
	}
	return sdb, nil
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Sources []string `arg:"" optional:"" help:"Adapter IDs to run (see 'pacm sources list')"`
	All     bool     `help:"Run every adapter"`
	Rate    float64  `help:"Requests per second per host, overrides import_rate"`
}

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	if !c.All && len(c.Sources) == 0 {
		return fmt.Errorf("name at least one adapter or pass --all")
	}
	sdb, err := openSources(deps.Config)
	if err != nil {
		return err
	}
	defer sdb.Close()

	rate := deps.Config.ImportRate
	if c.Rate > 0 {
		rate = c.Rate
	}
	importer.SetRateLimit(rate)

	var adapters []importer.Adapter
	if c.All {
		adapters = importer.All()
	} else {
		for _, id := range c.Sources {
			a, err := importer.Get(id)
			if err != nil {
				return err
			}
			adapters = append(adapters, a)
		}
	}

	var failed []string
	for _, a := range adapters {
		url, err := sdb.GetURL(a.ID())
		if err != nil {
			return err
		}
		start := time.Now()
		n, err := a.Import(deps.Ctx, url, deps.Config.DataDir)
		if err != nil {
			deps.Logger.Error("import failed", "adapter", a.ID(), "url", url, "error", err)
			failed = append(failed, a.ID())
			continue
		}
		if err := sdb.RecordImport(a.ID(), n); err != nil {
			deps.Logger.Warn("record import", "adapter", a.ID(), "error", err)
		}
		deps.Logger.Info("imported", "adapter", a.ID(), "feed", a.FeedID(), "records", n, "elapsed", time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(deps.Stdout, "%s: %d records -> %s/%s\n", a.ID(), n, deps.Config.DataDir, a.FeedID())
	}
	if len(failed) > 0 {
		return fmt.Errorf("import failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct {
	List SourcesListCmd `cmd:"" default:"1" help:"List adapters, their URLs and last results"`
	Set  SourcesSetCmd  `cmd:"" help:"Point an adapter at another URL"`
}

type SourcesListCmd struct{}

// Run executes the sources list command.
func (c *SourcesListCmd) Run(deps *Dependencies) error {
	sdb, err := openSources(deps.Config)
	if err != nil {
		return err
	}
	defer sdb.Close()

	sources, err := sdb.ListSources()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ADAPTER\tFEED\tKIND\tSTATUS\tLAST IMPORT\tURL")
	for _, s := range sources {
		status := "-"
		if s.LastStatus != nil {
			status = fmt.Sprint(*s.LastStatus)
		}
		imported := "-"
		if s.LastImport != nil && s.LastCount != nil {
			imported = fmt.Sprintf("%s (%d)", time.Unix(*s.LastImport, 0).UTC().Format(time.DateOnly), *s.LastCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.AdapterID, s.FeedID, s.Kind, status, imported, s.SourceURL)
	}
	return tw.Flush()
}

type SourcesSetCmd struct {
	Adapter string `arg:"" help:"Adapter ID"`
	URL     string `arg:"" help:"New source URL"`
}

// Run executes the sources set command.
func (c *SourcesSetCmd) Run(deps *Dependencies) error {
	if _, err := importer.Get(c.Adapter); err != nil {
		return err
	}
	sdb, err := openSources(deps.Config)
	if err != nil {
		return err
	}
	defer sdb.Close()
	if err := sdb.SetURL(c.Adapter, c.URL); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "%s -> %s\n", c.Adapter, c.URL)
	return nil
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct{}

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	sdb, err := openSources(deps.Config)
	if err != nil {
		return err
	}
	defer sdb.Close()
	importer.SetRateLimit(deps.Config.ImportRate)

	results := importer.NewChecker(sdb, deps.Logger, 0).CheckAll(deps.Ctx)
	down := 0
	for _, r := range results {
		state := "ok"
		if !r.OK() {
			state = "DOWN"
			down++
		}
		detail := fmt.Sprint(r.Status)
		if r.Error != "" {
			detail = r.Error
		}
		fmt.Fprintf(deps.Stdout, "%-4s  %-22s  %s  %s\n", state, r.AdapterID, detail, r.URL)
	}
	if down > 0 {
		return fmt.Errorf("%d of %d sources unavailable", down, len(results))
	}
	return nil
}
