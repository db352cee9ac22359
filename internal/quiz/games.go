package quiz

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Drill is a single-answer multiplication or division question.
type Drill struct {
	Question    string
	RightAnswer string
}

// Multi1 asks m * n or (m*n) : n for factors 1..9.
func Multi1(rng *rand.Rand) Drill {
	m := rng.Intn(9) + 1
	n := rng.Intn(9) + 1
	mul := m * n
	if rng.Intn(2) == 1 {
		return Drill{Question: fmt.Sprintf("%d * %d = ?", m, n), RightAnswer: strconv.Itoa(mul)}
	}
	return Drill{Question: fmt.Sprintf("%d : %d = ?", mul, n), RightAnswer: strconv.Itoa(m)}
}

// Factorisation asks for every factor pair of a product on one line.
type Factorisation struct {
	Product     int
	Pairs       []Pair
	Question    string
	RightAnswer string
}

// Multi2 picks a random product and asks for all of its factor pairs.
func (t *Tables) Multi2(rng *rand.Rand) Factorisation {
	p := t.products[rng.Intn(len(t.products))]
	pairs := t.Factors[p]

	blanks := make([]string, len(pairs))
	answers := make([]string, len(pairs))
	for i, f := range pairs {
		blanks[i] = "? x ?"
		answers[i] = fmt.Sprintf("%d x %d", f[0], f[1])
	}
	return Factorisation{
		Product:     p,
		Pairs:       append([]Pair(nil), pairs...),
		Question:    fmt.Sprintf("%d = %s", p, strings.Join(blanks, "; ")),
		RightAnswer: strings.Join(answers, "; "),
	}
}

// Multi3 picks a random multi-line factorisation question.
func (t *Tables) Multi3(rng *rand.Rand) Question {
	return t.Questions[rng.Intn(len(t.Questions))]
}

// CheckDrill reports whether answer matches right, ignoring case and
// surrounding space.
func CheckDrill(answer, right string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == right
}

// CheckPairs reports whether answer lists exactly the given factor pairs,
// in any order and with either factor first. Any non-digit separates numbers.
func CheckPairs(answer string, pairs []Pair) bool {
	nums := ParseNumbers(answer)
	if len(nums) == 0 || len(nums)%2 != 0 || len(nums)/2 != len(pairs) {
		return false
	}
	got := make([]Pair, 0, len(nums)/2)
	for i := 0; i < len(nums); i += 2 {
		got = append(got, normalize(Pair{nums[i], nums[i+1]}))
	}
	want := make([]Pair, len(pairs))
	for i, p := range pairs {
		want[i] = normalize(p)
	}
	sortPairs(got)
	sortPairs(want)
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// CheckLines reports whether a multi-line answer is one of the accepted
// variants. Each line holds one pair; a single line may hold all of them.
func CheckLines(answer string, variants [][]Pair) bool {
	var got []Pair
	for _, line := range strings.Split(strings.TrimSpace(answer), "\n") {
		nums := ParseNumbers(line)
		if len(nums) == 0 {
			continue
		}
		if len(nums)%2 != 0 {
			return false
		}
		for i := 0; i < len(nums); i += 2 {
			got = append(got, Pair{nums[i], nums[i+1]})
		}
	}
	if len(got) == 0 {
		return false
	}

	for _, v := range variants {
		if equalPairs(got, v) {
			return true
		}
	}
	return false
}

// ParseNumbers extracts the decimal numbers from s; every other character
// is a separator.
func ParseNumbers(s string) []int {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

func normalize(p Pair) Pair {
	if p[0] > p[1] {
		return Pair{p[1], p[0]}
	}
	return p
}

func equalPairs(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
