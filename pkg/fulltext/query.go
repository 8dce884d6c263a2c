// CLAUDE:SUMMARY Tokenizes raw search queries into quoted phrases and bare terms.
package fulltext

import "strings"

// ParsedQuery is the tokenized form of a raw query.
type ParsedQuery struct {
	Phrases []string `json:"phrases"`
	Terms   []string `json:"terms"`
	// IsSinglePhrase is set when the whole query reads as one phrase: a single
	// quoted span, or several bare words without quotes.
	IsSinglePhrase bool `json:"is_single_phrase"`
	// Quoted is set when the whole query is exactly one quoted span.
	Quoted bool `json:"quoted"`
}

// Empty reports whether the query has no phrase and no term.
func (q ParsedQuery) Empty() bool {
	return len(q.Phrases) == 0 && len(q.Terms) == 0
}

// ParseQuery scans raw left to right: a non-empty "..." span is one phrase
// (inner whitespace collapsed), anything else separated by whitespace is a
// term with stray quote characters removed. An unterminated quote opens no
// phrase; the rest of the input is read as terms. Blank input gives an empty
// query.
func ParseQuery(raw string) ParsedQuery {
	var q ParsedQuery
	s := strings.TrimSpace(raw)
	for len(s) > 0 {
		s = strings.TrimLeft(s, " \t\n\r\f\v")
		if s == "" {
			break
		}
		if s[0] == '"' {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				q.addTerms(s)
				break
			}
			if phrase := strings.Join(strings.Fields(s[1:end+1]), " "); phrase != "" {
				q.Phrases = append(q.Phrases, phrase)
			}
			s = s[end+2:]
			continue
		}
		n := strings.IndexAny(s, " \t\n\r\f\v")
		if n < 0 {
			n = len(s)
		}
		q.addTerms(s[:n])
		s = s[n:]
	}

	q.Quoted = len(q.Phrases) == 1 && len(q.Terms) == 0
	q.IsSinglePhrase = q.Quoted || (len(q.Phrases) == 0 && len(q.Terms) > 1)
	return q
}

func (q *ParsedQuery) addTerms(s string) {
	for _, f := range strings.Fields(s) {
		if t := strings.ReplaceAll(f, `"`, ""); t != "" {
			q.Terms = append(q.Terms, t)
		}
	}
}
