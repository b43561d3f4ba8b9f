package pairing

// History is the set of unordered player pairs that already met in a
// tournament. The zero value is an empty history that can be read but not
// written; use NewHistory to add pairs.
type History map[[2]int]struct{}

func NewHistory() History {
	return make(History)
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (h History) Add(a, b int) {
	h[pairKey(a, b)] = struct{}{}
}

func (h History) Has(a, b int) bool {
	_, ok := h[pairKey(a, b)]
	return ok
}

func (h History) Len() int {
	return len(h)
}
