package fulltext

import (
	"reflect"
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		in      string
		phrases []string
		terms   []string
		single  bool
		quoted  bool
	}{
		{"", nil, nil, false, false},
		{"   ", nil, nil, false, false},
		{`""`, nil, nil, false, false},
		{`"  "`, nil, nil, false, false},
		{"climate", nil, []string{"climate"}, false, false},
		{"alpha beta", nil, []string{"alpha", "beta"}, true, false},
		{`"net zero"`, []string{"net zero"}, nil, true, true},
		{`"net    zero"`, []string{"net zero"}, nil, true, true},
		{`"net zero" finance`, []string{"net zero"}, []string{"finance"}, false, false},
		{`finance "net zero" "carbon removal"`, []string{"net zero", "carbon removal"}, []string{"finance"}, false, false},
		{`"unterminated phrase`, nil, []string{"unterminated", "phrase"}, true, false},
		{`foo"bar`, nil, []string{"foobar"}, false, false},
		{`"" climate`, nil, []string{"climate"}, false, false},
	}
	for _, tt := range tests {
		q := ParseQuery(tt.in)
		if !reflect.DeepEqual(q.Phrases, tt.phrases) {
			t.Errorf("ParseQuery(%q).Phrases = %q, want %q", tt.in, q.Phrases, tt.phrases)
		}
		if !reflect.DeepEqual(q.Terms, tt.terms) {
			t.Errorf("ParseQuery(%q).Terms = %q, want %q", tt.in, q.Terms, tt.terms)
		}
		if q.IsSinglePhrase != tt.single {
			t.Errorf("ParseQuery(%q).IsSinglePhrase = %v, want %v", tt.in, q.IsSinglePhrase, tt.single)
		}
		if q.Quoted != tt.quoted {
			t.Errorf("ParseQuery(%q).Quoted = %v, want %v", tt.in, q.Quoted, tt.quoted)
		}
	}
}

func TestParseQuery_EmptyOnlyWhenNothingToMatch(t *testing.T) {
	for _, in := range []string{"", " \t\n", `""`, `" "`, `"`} {
		if q := ParseQuery(in); !q.Empty() {
			t.Errorf("ParseQuery(%q) not empty: %+v", in, q)
		}
	}
	if q := ParseQuery("x"); q.Empty() {
		t.Error(`ParseQuery("x") is empty`)
	}
}
