package fulltext

import (
	"sort"
	"strings"
	"time"
)

// RankDocuments orders hits by match count, then score (both descending),
// then most recent date, title and URL, and numbers them from 1. When either
// date does not parse the two are compared as strings, descending. Equal
// inputs always rank the same way.
func RankDocuments(hits []DocumentHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := &hits[i], &hits[j]
		if a.MatchCount != b.MatchCount {
			return a.MatchCount > b.MatchCount
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if da, db := parseDate(a.Date), parseDate(b.Date); !da.IsZero() && !db.IsZero() {
			if !da.Equal(db) {
				return da.After(db)
			}
		} else if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.URL < b.URL
	})
	for i := range hits {
		hits[i].Rank = i + 1
	}
}

// RankOccurrences orders occurrences by score (descending), then document
// title, position in the text and URL, and numbers them from 1.
func RankOccurrences(occs []Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		a, b := &occs[i], &occs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.URL < b.URL
	})
	for i := range occs {
		occs[i].Rank = i + 1
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
	"2006",
}

// parseDate reads the date formats seen in catalogue feeds. Unparseable dates
// are the zero time.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
