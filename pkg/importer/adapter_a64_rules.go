// CLAUDE:SUMMARY Import adapter scraping the Article 6.4 rules-and-regulations page into a catalogue feed.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"github.com/hazyhaar/pacm-search/pkg/library"
)

func init() {
	Register(&a64RulesAdapter{})
}

type a64RulesAdapter struct{}

func (a *a64RulesAdapter) ID() string     { return "a64-rules" }
func (a *a64RulesAdapter) FeedID() string { return "a64-catalogue" }
func (a *a64RulesAdapter) Kind() string   { return library.KindCatalogue }
func (a *a64RulesAdapter) Description() string {
	return "Article 6.4 Supervisory Body rules and regulations page (current English versions)"
}
func (a *a64RulesAdapter) DefaultURL() string {
	return "https://unfccc.int/process-and-meetings/bodies/constituted-bodies/article-64-supervisory-body/rules-and-regulations"
}
func (a *a64RulesAdapter) License() string { return "UNFCCC terms of use" }

func (a *a64RulesAdapter) Import(ctx context.Context, sourceURL, outputDir string) (int, error) {
	page, err := downloadBytes(ctx, sourceURL)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	records, err := ParseRulesPage(page, sourceURL)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("parse: no documents found on %s", sourceURL)
	}

	err = writeFeed(outputDir, &library.Manifest{
		ID:        a.FeedID(),
		Version:   time.Now().UTC().Format("2006-01-02"),
		Kind:      a.Kind(),
		Source:    "UNFCCC Article 6.4 rules and regulations",
		SourceURL: sourceURL,
		License:   a.License(),
	}, records, nil)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

const cmaSection = "CMA related decisions and documents"

var (
	versionRx  = regexp.MustCompile(`(?i)^\s*(ver\.|version)\s*[.:]?\s*\d+(?:\.\d+)*\s*$`)
	badTitleRx = regexp.MustCompile(`(?i)^(instructions?|english|click here|ver\.|version)\b`)
)

func clean(s string) string { return strings.Join(strings.Fields(s), " ") }

func badTitle(s string) bool {
	return s == "" || versionRx.MatchString(s) || badTitleRx.MatchString(s)
}

// ParseRulesPage extracts the current English version of every document
// listed on the rules-and-regulations page. Tables are attributed to their
// nearest preceding h2 (section) and h3/h4 (subsection); form tables and
// Word/Excel files are skipped. Records are deduplicated by URL, the longer
// title winning, and sorted by section, subsection, symbol and title.
func ParseRulesPage(page []byte, pageURL string) ([]catalog.Record, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	records := parseCMA(doc, base)

	var sec, sub string
	doc.Find("h2, h3, h4, table").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h2":
			sec, sub = clean(s.Text()), ""
		case "h3", "h4":
			sub = clean(s.Text())
		case "table":
			lsec, lsub := strings.ToLower(sec), strings.ToLower(sub)
			if strings.Contains(lsec, "forms") || strings.Contains(lsub, "forms") {
				return
			}
			if strings.Contains(lsec, strings.ToLower(cmaSection)) {
				return
			}
			records = append(records, parseTable(s, sec, sub, base)...)
		}
	})

	records = dedupeByURL(records)
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		if a.Subsection != b.Subsection {
			return a.Subsection < b.Subsection
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Title < b.Title
	})
	return records, nil
}

func parseTable(table *goquery.Selection, sec, sub string, base *url.URL) []catalog.Record {
	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil
	}
	var headers []string
	rows.First().Find("th, td").Each(func(_ int, c *goquery.Selection) {
		headers = append(headers, strings.ToLower(clean(c.Text())))
	})
	col := func(keys ...string) int {
		for i, h := range headers {
			for _, k := range keys {
				if strings.Contains(h, k) {
					return i
				}
			}
		}
		return -1
	}
	idxCurrent := col("current version")
	idxTitle := col("title", "document", "name")
	idxSymbol := col("symbol")
	idxDate := col("entry into force", "publication date", "date")

	var out []catalog.Record
	rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() == 0 {
			return
		}
		cellText := func(i int) string {
			if i < 0 || i >= cells.Length() {
				return ""
			}
			return clean(cells.Eq(i).Text())
		}

		var link *goquery.Selection
		if idxCurrent >= 0 && idxCurrent < cells.Length() {
			link = englishLink(cells.Eq(idxCurrent).Find("a[href]"))
		}
		if link == nil {
			link = englishLink(tr.Find("a[href]"))
		}
		if link == nil {
			return
		}
		href, _ := link.Attr("href")
		if href == "" || isOfficeFile(href) {
			return
		}
		u := resolve(base, href)
		if u == "" {
			return
		}

		title := cellText(idxTitle)
		if badTitle(title) {
			title = ""
			cells.EachWithBreak(func(_ int, c *goquery.Selection) bool {
				if t := clean(c.Text()); !badTitle(t) {
					title = t
					return false
				}
				return true
			})
		}
		if badTitle(title) {
			title = clean(link.Text())
		}
		if badTitle(title) {
			return
		}

		out = append(out, catalog.Record{
			Title:      title,
			URL:        u,
			Symbol:     cellText(idxSymbol),
			Date:       cellText(idxDate),
			Type:       typeForSection(sec),
			Section:    sec,
			Subsection: sub,
		})
	})
	return out
}

// parseCMA reads the links of the CMA decisions section. The guidance
// addendum carries two decisions and becomes two records distinguished by URL
// fragment.
func parseCMA(doc *goquery.Document, base *url.URL) []catalog.Record {
	h2 := doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.Text()), strings.ToLower(cmaSection))
	}).First()
	if h2.Length() == 0 {
		return nil
	}

	var out []catalog.Record
	sub := ""
	h2.NextUntil("h2").Each(func(_ int, sib *goquery.Selection) {
		if name := goquery.NodeName(sib); name == "h3" || name == "h4" {
			sub = clean(sib.Text())
			return
		}
		guidance := strings.Contains(strings.ToLower(sub), "guidance")
		sib.Find("a[href]").AddSelection(sib.Filter("a[href]")).Each(func(_ int, a *goquery.Selection) {
			txt := clean(a.Text())
			href, _ := a.Attr("href")
			if href == "" {
				return
			}
			if !strings.Contains(href, "/FCCC/PA/CMA/") && !strings.HasPrefix(txt, "FCCC/PA/CMA") &&
				!strings.HasSuffix(strings.ToLower(href), ".pdf") {
				return
			}
			u := resolve(base, href)
			if u == "" {
				return
			}

			if guidance && (strings.Contains(u, "2024/17/Add.1") || strings.Contains(txt, "2024/17/Add.1")) {
				for _, n := range []string{"5", "6"} {
					out = append(out, catalog.Record{
						Title:      "Decision " + n + "/CMA.6 (Guidance on Article 6.4)",
						URL:        u + "#" + n + "CMA6",
						Symbol:     n + "/CMA.6",
						Date:       "2024",
						Type:       "CMA decision",
						Section:    cmaSection,
						Subsection: "CMA guidance on Article 6.4",
					})
				}
				return
			}
			if txt != "" && badTitle(txt) {
				return
			}
			title, typ := txt, "CMA report"
			if title == "" {
				title = "CMA document"
			}
			if guidance {
				typ = "CMA decision"
			}
			out = append(out, catalog.Record{
				Title:      title,
				URL:        u,
				Type:       typ,
				Section:    cmaSection,
				Subsection: sub,
			})
		})
	})

	seen := make(map[string]bool, len(out))
	uniq := out[:0]
	for _, r := range out {
		k := r.URL + "\x00" + strings.ToLower(r.Title)
		if seen[k] {
			continue
		}
		seen[k] = true
		uniq = append(uniq, r)
	}
	return uniq
}

func englishLink(links *goquery.Selection) *goquery.Selection {
	if links.Length() == 0 {
		return nil
	}
	eng := links.FilterFunction(func(_ int, a *goquery.Selection) bool {
		t := strings.ToLower(a.Text())
		return strings.Contains(t, "eng")
	})
	if eng.Length() > 0 {
		return eng.First()
	}
	return links.First()
}

func isOfficeFile(href string) bool {
	h := strings.ToLower(href)
	for _, ext := range []string{".doc", ".docx", ".xls", ".xlsx"} {
		if strings.HasSuffix(h, ext) {
			return true
		}
	}
	return false
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func typeForSection(sec string) string {
	s := strings.ToLower(sec)
	switch {
	case strings.Contains(s, "standard"):
		return "Standard"
	case strings.Contains(s, "procedure"):
		return "Procedure"
	case strings.Contains(s, "tool"):
		return "Tool"
	case strings.Contains(s, "information note"):
		return "Information note"
	case strings.Contains(s, "regular reports"):
		return "Regular report"
	default:
		return ""
	}
}

// dedupeByURL keeps one record per full URL (fragments included), at the
// position of its first appearance, preferring the longer title.
func dedupeByURL(records []catalog.Record) []catalog.Record {
	index := make(map[string]int, len(records))
	out := make([]catalog.Record, 0, len(records))
	for _, r := range records {
		i, ok := index[r.URL]
		if !ok {
			index[r.URL] = len(out)
			out = append(out, r)
			continue
		}
		if len(r.Title) > len(out[i].Title) {
			out[i] = r
		}
	}
	return out
}
