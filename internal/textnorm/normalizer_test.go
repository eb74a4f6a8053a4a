package textnorm

import (
	"strings"
	"sync"
	"testing"
)

type mapLemmatizer map[string]string

func (m mapLemmatizer) Lemma(word string) string {
	if l, ok := m[word]; ok {
		return l
	}
	return word
}

func TestNormalize_Basic(t *testing.T) {
	n := NewWithLemmatizer(mapLemmatizer{"pipes": "pipe", "leaking": "leak"})

	got := n.Normalize("The PIPES are leaking near Ward 12!!!")
	want := "pipe leak near ward"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	n := NewWithLemmatizer(nil)

	for _, in := range []string{"", "   ", "\t\n"} {
		if got := n.Normalize(in); got != "" {
			t.Errorf("Normalize(%q) = %q, want empty", in, got)
		}
	}
}

func TestNormalize_OnlyStopWordsAndDigits(t *testing.T) {
	n := NewWithLemmatizer(nil)

	if got := n.Normalize("It is 42 and it was there."); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestNormalize_StripsPunctuationInsideWords(t *testing.T) {
	n := NewWithLemmatizer(nil)

	// Apostrophes are removed before the stop-word lookup, so "don't" survives as "dont"
	got := n.Normalize("don't   stop-light")
	if got != "dont stoplight" {
		t.Errorf("Normalize() = %q, want %q", got, "dont stoplight")
	}
}

func TestNormalize_FoldsDiacritics(t *testing.T) {
	n := NewWithLemmatizer(nil)

	got := n.Normalize("Café near the Plaza Mayor")
	if got != "cafe near plaza mayor" {
		t.Errorf("Normalize() = %q, want %q", got, "cafe near plaza mayor")
	}
}

func TestNormalize_SingleSpaces(t *testing.T) {
	n := NewWithLemmatizer(nil)

	got := n.Normalize("garbage\t\tpile\n\nstreet")
	if got != "garbage pile street" {
		t.Errorf("Normalize() = %q", got)
	}
}

func TestNormalize_Concurrent(t *testing.T) {
	n := NewWithLemmatizer(mapLemmatizer{"lights": "light"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := n.Normalize("Street lights broken"); got != "street light broken" {
				t.Errorf("unexpected output %q", got)
			}
		}()
	}
	wg.Wait()
}

func TestNew_EnglishDictionary(t *testing.T) {
	n, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got := n.Normalize("The roads near the markets")
	if !strings.Contains(got, "road") || !strings.Contains(got, "market") {
		t.Errorf("expected lemmatized tokens, got %q", got)
	}
	if strings.Contains(got, "the") {
		t.Errorf("expected stop-words removed, got %q", got)
	}
}

func TestIsStopWord(t *testing.T) {
	for _, w := range []string{"the", "no", "not", "is"} {
		if !IsStopWord(w) {
			t.Errorf("expected %q to be a stop-word", w)
		}
	}
	for _, w := range []string{"water", "road", "power"} {
		if IsStopWord(w) {
			t.Errorf("expected %q not to be a stop-word", w)
		}
	}
}
