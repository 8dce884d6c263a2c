package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/pacm-search/pkg/library"
)

const rulesPage = `<html><body>
<h2>CMA related decisions and documents</h2>
<h3>CMA guidance on Article 6.4</h3>
<p><a href="/sites/default/files/resource/cma2024_17a01E.pdf">FCCC/PA/CMA/2024/17/Add.1</a></p>
<h3>Annual reports</h3>
<ul>
  <li><a href="/documents/FCCC/PA/CMA/2023/15">FCCC/PA/CMA/2023/15</a></li>
  <li><a href="/documents/FCCC/PA/CMA/2023/15">FCCC/PA/CMA/2023/15</a></li>
  <li><a href="/about">About us</a></li>
</ul>
<table><tr><th>Title</th><th>Current version</th></tr>
<tr><td>Should be skipped</td><td><a href="/skip.html">ENG</a></td></tr></table>

<h2>Standards</h2>
<h3>Methodologies</h3>
<table>
  <tr><th>Document</th><th>Symbol</th><th>Date of entry into force</th><th>Current version</th></tr>
  <tr><td>Standard: Application of the requirements</td><td>A6.4-STAN-METH-001</td><td>10 Oct 2024</td>
      <td><a href="/files/meth001_fr.pdf">FRA</a> <a href="/files/meth001.pdf">ENG</a></td></tr>
  <tr><td>ver. 01.0</td><td>A6.4-STAN-METH-002</td><td>2024</td>
      <td><a href="/files/meth002.pdf">English</a></td></tr>
  <tr><td>Instructions</td><td></td><td></td><td><a href="/files/form.docx">ENG</a></td></tr>
</table>

<h2>Procedures</h2>
<table>
  <tr><th>Title</th><th>Symbol</th><th>Current version</th></tr>
  <tr><td>Procedure: Appeals</td><td>A6.4-PROC-AC-001</td><td><a href="https://unfccc.int/files/appeal.pdf">ENG</a></td></tr>
  <tr><td>Appeals</td><td>A6.4-PROC-AC-001</td><td><a href="https://unfccc.int/files/appeal.pdf">ENG</a></td></tr>
</table>

<h2>Forms</h2>
<table>
  <tr><th>Title</th><th>Current version</th></tr>
  <tr><td>Registration form</td><td><a href="/files/reg.pdf">ENG</a></td></tr>
</table>
</body></html>`

func TestParseRulesPage(t *testing.T) {
	records, err := ParseRulesPage([]byte(rulesPage), "https://unfccc.int/rules")
	if err != nil {
		t.Fatalf("ParseRulesPage: %v", err)
	}

	byURL := make(map[string]int)
	for i, r := range records {
		byURL[r.URL] = i
	}

	for _, u := range []string{
		"https://unfccc.int/sites/default/files/resource/cma2024_17a01E.pdf#5CMA6",
		"https://unfccc.int/sites/default/files/resource/cma2024_17a01E.pdf#6CMA6",
	} {
		i, ok := byURL[u]
		if !ok {
			t.Fatalf("missing guidance record %s", u)
		}
		if records[i].Type != "CMA decision" || records[i].Date != "2024" {
			t.Errorf("guidance record = %+v", records[i])
		}
	}
	if i, ok := byURL["https://unfccc.int/documents/FCCC/PA/CMA/2023/15"]; !ok {
		t.Error("missing annual report")
	} else if records[i].Type != "CMA report" || records[i].Subsection != "Annual reports" {
		t.Errorf("annual report = %+v", records[i])
	}
	if _, ok := byURL["https://unfccc.int/about"]; ok {
		t.Error("non-document CMA link should be skipped")
	}
	if _, ok := byURL["https://unfccc.int/skip.html"]; ok {
		t.Error("tables in the CMA section should be skipped")
	}
	if _, ok := byURL["https://unfccc.int/files/reg.pdf"]; ok {
		t.Error("form tables should be skipped")
	}

	i, ok := byURL["https://unfccc.int/files/meth001.pdf"]
	if !ok {
		t.Fatal("English link should be picked over the French one")
	}
	m := records[i]
	if m.Title != "Standard: Application of the requirements" || m.Symbol != "A6.4-STAN-METH-001" ||
		m.Date != "10 Oct 2024" || m.Type != "Standard" || m.Section != "Standards" || m.Subsection != "Methodologies" {
		t.Errorf("methodology record = %+v", m)
	}

	if i, ok := byURL["https://unfccc.int/files/meth002.pdf"]; !ok {
		t.Error("row with a version-only title should fall back to another cell")
	} else if records[i].Title != "A6.4-STAN-METH-002" {
		t.Errorf("fallback title = %q", records[i].Title)
	}

	if i, ok := byURL["https://unfccc.int/files/appeal.pdf"]; !ok {
		t.Error("missing appeal procedure")
	} else if records[i].Title != "Procedure: Appeals" || records[i].Type != "Procedure" {
		t.Errorf("URL dedupe should keep the longer title, got %+v", records[i])
	}

	if len(records) != 6 {
		t.Errorf("got %d records, want 6: %+v", len(records), records)
	}
	for j := 1; j < len(records); j++ {
		if records[j-1].Section > records[j].Section {
			t.Errorf("records not sorted by section at %d", j)
		}
	}
}

func TestA64RulesAdapter_Import(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rulesPage))
	}))
	defer ts.Close()

	a, err := Get("a64-rules")
	if err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()
	n, err := a.Import(context.Background(), ts.URL+"/rules", out)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 6 {
		t.Errorf("Import wrote %d records, want 6", n)
	}

	feed, err := library.LoadFeed(filepath.Join(out, "a64-catalogue"))
	if err != nil {
		t.Fatalf("LoadFeed: %v", err)
	}
	if feed.Manifest.Kind != library.KindCatalogue || len(feed.Records) != 6 {
		t.Errorf("feed = %+v with %d records", feed.Manifest, len(feed.Records))
	}
}
