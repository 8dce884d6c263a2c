package fulltext

import "testing"

func TestGramFilter(t *testing.T) {
	g := newGramFilter("Climate Finance under Article 6.4")
	for _, words := range [][]string{{"CLIMATE"}, {"finance", "article"}, {"6.4"}, {"ab"}, nil} {
		if !g.mayContain(words) {
			t.Errorf("mayContain(%q) = false, want true", words)
		}
	}
	if g.mayContain([]string{"climate", "zzzqqqxxxwwwvvv"}) {
		t.Error("mayContain reported a word absent from the text")
	}
	var none *gramFilter
	if !none.mayContain([]string{"anything"}) {
		t.Error("nil filter must not exclude")
	}
}

func TestFoldRune(t *testing.T) {
	pairs := [][2]rune{{'K', 'k'}, {'k', 'K'}, {'É', 'é'}, {'Σ', 'ς'}}
	for _, p := range pairs {
		if foldRune(p[0]) != foldRune(p[1]) {
			t.Errorf("foldRune(%q) = %q, foldRune(%q) = %q", p[0], foldRune(p[0]), p[1], foldRune(p[1]))
		}
	}
}
