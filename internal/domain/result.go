package domain

// Mode selects how terms are keyed in a Result.
type Mode string

const (
	// WordMode keys the result by single words, one vector each.
	WordMode Mode = "word"
	// PhraseMode keys the result by whole terms, one vector per found word.
	PhraseMode Mode = "phrase"
)

// ModeFor maps the phrase-level flag onto a Mode.
func ModeFor(phraseLevel bool) Mode {
	if phraseLevel {
		return PhraseMode
	}
	return WordMode
}

// Entry is one key of a Result with its vectors. In word mode Vectors has
// exactly one element.
type Entry struct {
	Key     string
	Vectors []Vector
}

// Result is an insertion-ordered mapping from words or terms to vectors.
type Result struct {
	mode    Mode
	keys    []string
	entries map[string][]Vector
}

// NewResult returns an empty result for the given mode.
func NewResult(mode Mode) *Result {
	return &Result{mode: mode, entries: make(map[string][]Vector)}
}

func (r *Result) Mode() Mode { return r.mode }

func (r *Result) Len() int { return len(r.keys) }

// Has reports whether key was already inserted.
func (r *Result) Has(key string) bool {
	_, ok := r.entries[key]
	return ok
}

// Keys returns the keys in first-insert order.
func (r *Result) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// SetWord inserts a word-mode entry. It returns false and leaves the result
// unchanged if the word is already present.
func (r *Result) SetWord(word string, vec Vector) bool {
	if r.Has(word) {
		return false
	}
	r.keys = append(r.keys, word)
	r.entries[word] = []Vector{vec}
	return true
}

// SetPhrase inserts or replaces a phrase-mode entry. A term seen twice keeps
// its first position and its latest vectors.
func (r *Result) SetPhrase(term string, vecs []Vector) {
	if !r.Has(term) {
		r.keys = append(r.keys, term)
	}
	r.entries[term] = vecs
}

// Word returns the vector stored for a word-mode key.
func (r *Result) Word(key string) (Vector, bool) {
	v, ok := r.entries[key]
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v[0], true
}

// Phrase returns the vector list stored for a phrase-mode key.
func (r *Result) Phrase(key string) ([]Vector, bool) {
	v, ok := r.entries[key]
	return v, ok
}

// Entries returns all entries in insertion order.
func (r *Result) Entries() []Entry {
	out := make([]Entry, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, Entry{Key: k, Vectors: r.entries[k]})
	}
	return out
}
