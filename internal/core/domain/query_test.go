package domain

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize_FullWidthMapping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"digits", "０１２３４５６７８９", "0123456789"},
		{"letters", "ＡＢＣＸＹＺ", "ABCXYZ"},
		{"punctuation", "（ＦＸ－１）", "(FX-1)"},
		{"ideographic space trimmed", "　ＫＸ１　", "KX1"},
		{"mixed with kana", "ＫＸ-ＳＤＲ　暖房", "KX-SDR 暖房"},
		{"already half-width", "FX-1 heater", "FX-1 heater"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got.Text != tt.want {
				t.Errorf("Normalize(%q).Text = %q, want %q", tt.in, got.Text, tt.want)
			}
		})
	}
}

func TestNormalize_NoFullWidthRemains(t *testing.T) {
	in := "０Ａ１Ｂ２Ｃ（－）　９Ｚ"
	got := Normalize(in).Text

	for _, r := range got {
		if r >= '０' && r <= '９' {
			t.Errorf("full-width digit %q remains in %q", r, got)
		}
		if r >= 'Ａ' && r <= 'Ｚ' {
			t.Errorf("full-width letter %q remains in %q", r, got)
		}
	}
	if strings.ContainsAny(got, "（）－　") {
		t.Errorf("full-width punctuation remains in %q", got)
	}
}

func TestNormalize_IdempotentOnHalfWidth(t *testing.T) {
	inputs := []string{"FX-1", "meiji balance 200", "KX-SDR heater", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once.Text)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %q: %+v != %+v", in, once, twice)
		}
	}
}

func TestNormalize_TermExtraction(t *testing.T) {
	got := Normalize("KX-SDR　暖房 200ml")

	if want := []string{"KX-SDR", "200ML"}; !reflect.DeepEqual(got.SKUPatterns, want) {
		t.Errorf("SKUPatterns = %v, want %v", got.SKUPatterns, want)
	}
	if want := []string{"暖房"}; !reflect.DeepEqual(got.CJKWords, want) {
		t.Errorf("CJKWords = %v, want %v", got.CJKWords, want)
	}
	if want := []string{"200"}; !reflect.DeepEqual(got.Numbers, want) {
		t.Errorf("Numbers = %v, want %v", got.Numbers, want)
	}
}

func TestNormalize_OverlappingClasses(t *testing.T) {
	// A digit run inside a SKU token lands in both sets - intentional
	got := Normalize("FX1")

	if want := []string{"FX1"}; !reflect.DeepEqual(got.SKUPatterns, want) {
		t.Errorf("SKUPatterns = %v, want %v", got.SKUPatterns, want)
	}
	if want := []string{"1"}; !reflect.DeepEqual(got.Numbers, want) {
		t.Errorf("Numbers = %v, want %v", got.Numbers, want)
	}
}

func TestNormalize_CJKRuns(t *testing.T) {
	got := Normalize("メイジバランスソフト")
	if len(got.CJKWords) != 1 || got.CJKWords[0] != "メイジバランスソフト" {
		t.Errorf("CJKWords = %v, want one maximal run", got.CJKWords)
	}

	// Single CJK code points do not form a word
	got = Normalize("水 x 湯")
	if len(got.CJKWords) != 0 {
		t.Errorf("CJKWords = %v, want none for single characters", got.CJKWords)
	}
}

func TestNormalize_EmptyAndNoMatches(t *testing.T) {
	got := Normalize("")
	if got.Text != "" || len(got.SKUPatterns) != 0 || len(got.CJKWords) != 0 || len(got.Numbers) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestNormalizedQuery_Terms(t *testing.T) {
	q := NormalizedQuery{
		SKUPatterns: []string{"FX-1", "200"},
		CJKWords:    []string{"暖房"},
		Numbers:     []string{"200", "1"},
	}

	want := []string{"FX-1", "200", "暖房", "1"}
	if got := q.Terms(); !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}
