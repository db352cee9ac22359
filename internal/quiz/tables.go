// Package quiz generates the arithmetic drills and the number-guessing game
// and checks players' answers.
package quiz

import (
	"fmt"
	"sort"
	"strings"
)

// Pair is one factorisation n x m with n <= m.
type Pair [2]int

// Question is a multi-answer drill: every factorisation of Product.
type Question struct {
	Product     int
	Text        string
	RightAnswer string
	// Answers lists every accepted ordering of the factor pairs.
	Answers [][]Pair
}

// Tables holds the precomputed multiplication tables. Build it once with
// NewTables and share it; it is read-only afterwards.
type Tables struct {
	// Products maps (n, m) to n*m for 2 <= n <= m <= 9.
	Products map[Pair]int
	// Factors maps a product to its sorted factor pairs.
	Factors map[int][]Pair
	// Questions holds one multi3 question per product, ordered by product.
	Questions []Question

	products []int
}

// NewTables builds the multiplication tables.
func NewTables() *Tables {
	t := &Tables{
		Products: make(map[Pair]int),
		Factors:  make(map[int][]Pair),
	}
	for n := 2; n <= 9; n++ {
		for m := n; m <= 9; m++ {
			t.Products[Pair{n, m}] = n * m
			t.Factors[n*m] = append(t.Factors[n*m], Pair{n, m})
		}
	}

	for p, pairs := range t.Factors {
		sortPairs(pairs)
		t.products = append(t.products, p)
	}
	sort.Ints(t.products)

	for _, p := range t.products {
		pairs := t.Factors[p]
		var text, right strings.Builder
		fmt.Fprintf(&text, "%d", p)
		fmt.Fprintf(&right, "%d", p)
		for _, f := range pairs {
			text.WriteString("\n= ? x ?")
			fmt.Fprintf(&right, "\n= %d x %d", f[0], f[1])
		}
		t.Questions = append(t.Questions, Question{
			Product:     p,
			Text:        text.String(),
			RightAnswer: right.String(),
			Answers:     Variants(pairs),
		})
	}
	return t
}

// ProductList returns the distinct products in ascending order.
func (t *Tables) ProductList() []int {
	out := make([]int, len(t.products))
	copy(out, t.products)
	return out
}

// Variants returns every ordering of pairs, combined with both orders of the
// factors inside each pair.
func Variants(pairs []Pair) [][]Pair {
	var out [][]Pair
	for _, perm := range permutations(pairs) {
		out = append(out, flips(perm, nil)...)
	}
	return out
}

// flips expands rest with both factor orders of each pair, appended to prefix.
func flips(rest []Pair, prefix []Pair) [][]Pair {
	if len(rest) == 0 {
		done := make([]Pair, len(prefix))
		copy(done, prefix)
		return [][]Pair{done}
	}
	p := rest[0]
	out := flips(rest[1:], append(prefix, p))
	if p[0] != p[1] {
		out = append(out, flips(rest[1:], append(prefix, Pair{p[1], p[0]}))...)
	}
	return out
}

func permutations(pairs []Pair) [][]Pair {
	if len(pairs) <= 1 {
		return [][]Pair{append([]Pair(nil), pairs...)}
	}
	var out [][]Pair
	for i := range pairs {
		rest := make([]Pair, 0, len(pairs)-1)
		rest = append(rest, pairs[:i]...)
		rest = append(rest, pairs[i+1:]...)
		for _, perm := range permutations(rest) {
			out = append(out, append([]Pair{pairs[i]}, perm...))
		}
	}
	return out
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}
