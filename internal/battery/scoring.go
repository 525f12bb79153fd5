package battery

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// defaultTolerance is the relative tolerance for numeric matches.
const defaultTolerance = 0.01

var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// Score evaluates a response against a test. Results are in [0, 1] and
// deterministic: the same response always gets the same score. Empty
// responses score 0, as do methods Validate would reject.
func Score(t Test, response string) float64 {
	if strings.TrimSpace(response) == "" {
		return 0
	}

	switch t.Method {
	case MethodExact:
		return scoreExact(response, t.Expected)
	case MethodNumeric:
		return scoreNumeric(response, t.Expected, t.Constraints.Tolerance)
	case MethodFormat:
		return scoreFormat(response, t.Constraints)
	case MethodCreative:
		return scoreCreative(response, t.Constraints)
	case MethodCode:
		return scoreCode(response, t.Constraints.Keywords)
	}
	return 0
}

// scoreExact passes when the expected answer appears anywhere in the
// response. The check is case-insensitive and repeated with punctuation
// stripped, so "Yes." matches an expected "yes".
func scoreExact(response, expected string) float64 {
	if expected == "" {
		return 0
	}

	resp := strings.ToLower(strings.TrimSpace(response))
	want := strings.ToLower(strings.TrimSpace(expected))
	if strings.Contains(resp, want) {
		return 1
	}
	if strings.Contains(stripPunct(resp), stripPunct(want)) {
		return 1
	}
	return 0
}

func stripPunct(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// scoreNumeric extracts every number from the response and passes when any
// of them matches the expected value within the relative tolerance. An
// expected value of zero uses the tolerance absolutely, since relative
// distance from zero is undefined.
func scoreNumeric(response, expected string, tolerance float64) float64 {
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	want, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
	if err != nil {
		return 0
	}

	for _, m := range numberPattern.FindAllString(response, -1) {
		num, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
		if err != nil {
			continue
		}
		if num == want {
			return 1
		}
		if want == 0 {
			if math.Abs(num) < tolerance {
				return 1
			}
			continue
		}
		if math.Abs(num-want)/math.Abs(want) <= tolerance {
			return 1
		}
	}
	return 0
}

// scoreFormat checks the structural constraints that apply. All configured
// constraints must hold.
func scoreFormat(response string, c Constraints) float64 {
	resp := strings.TrimSpace(response)

	if c.Words > 0 && len(strings.Fields(resp)) != c.Words {
		return 0
	}
	if c.Items > 0 && countItems(resp) != c.Items {
		return 0
	}
	if c.AllCaps && !isAllCaps(resp) {
		return 0
	}
	if len(c.OneOf) > 0 {
		clean := strings.TrimRight(strings.ToLower(resp), ".")
		ok := false
		for _, v := range c.OneOf {
			if clean == v {
				ok = true
				break
			}
		}
		if !ok {
			return 0
		}
	}
	if len(c.Sequence) > 0 {
		nums := extractInts(resp)
		if len(nums) != len(c.Sequence) {
			return 0
		}
		for i, n := range nums {
			if n != c.Sequence[i] {
				return 0
			}
		}
	}
	return 1
}

// countItems counts non-empty lines, falling back to comma-separated items
// for single-line answers.
func countItems(s string) int {
	lines := nonEmpty(strings.Split(s, "\n"))
	if len(lines) > 1 {
		return len(lines)
	}
	return len(nonEmpty(strings.Split(s, ",")))
}

func isAllCaps(s string) bool {
	sawLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			sawLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return sawLetter
}

func extractInts(s string) []int {
	var out []int
	for _, m := range regexp.MustCompile(`\d+`).FindAllString(s, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// scoreCreative checks the first configured structural target. Sentence
// counts allow full credit only under the word cap; word counts give partial
// credit within two words of the target; line counts accept slash or newline
// separators.
func scoreCreative(response string, c Constraints) float64 {
	if c.Sentences > 0 {
		sentences := nonEmpty(strings.Split(response, "."))
		if len(sentences) != c.Sentences {
			return 0
		}
		if c.MaxWords > 0 && len(strings.Fields(response)) > c.MaxWords {
			return 0.7
		}
		return 1
	}

	if c.Words > 0 {
		got := len(strings.Fields(response))
		switch {
		case got == c.Words:
			return 1
		case abs(got-c.Words) <= 2:
			return 0.7
		default:
			return 0
		}
	}

	if c.Lines > 0 {
		lines := nonEmpty(strings.Split(response, "/"))
		if len(lines) != c.Lines {
			lines = nonEmpty(strings.Split(response, "\n"))
		}
		if len(lines) == c.Lines {
			return 1
		}
		return 0
	}

	return 0.5
}

// scoreCode grades by keyword coverage: 75% of keywords for full credit,
// then 0.7 at 50% and 0.4 at 25%.
func scoreCode(response string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.5
	}

	respLower := strings.ToLower(response)
	found := 0
	for _, kw := range keywords {
		if strings.Contains(respLower, strings.ToLower(kw)) {
			found++
		}
	}

	coverage := float64(found) / float64(len(keywords))
	switch {
	case coverage >= 0.75:
		return 1
	case coverage >= 0.5:
		return 0.7
	case coverage >= 0.25:
		return 0.4
	default:
		return 0
	}
}

func nonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
