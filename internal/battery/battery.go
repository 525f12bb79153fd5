// Package battery defines the fixed prompt set sent to every model and the
// deterministic scoring rules for their responses.
//
// Tests are designed to be stable over time: arithmetic, historical facts,
// logic puzzles and format constraints whose correct answer does not change.
// Scoring never calls a model; a response is scored the same way every time.
package battery

import (
	"errors"
	"fmt"
)

// Category groups tests by the capability they exercise.
type Category string

const (
	CategoryMath        Category = "math"
	CategoryReasoning   Category = "reasoning"
	CategoryFactual     Category = "factual"
	CategoryConsistency Category = "consistency"
	CategoryInstruction Category = "instruction"
	CategoryCreative    Category = "creative"
	CategoryCode        Category = "code"
)

// ScoringMethod selects how a response is evaluated. The set is closed:
// Validate rejects a battery carrying any other value.
type ScoringMethod string

const (
	// MethodExact passes when the expected answer appears anywhere in the
	// response, case-insensitively, with or without punctuation.
	MethodExact ScoringMethod = "exact"

	// MethodNumeric extracts every number from the response and passes when
	// any of them matches the expected value within a relative tolerance.
	MethodNumeric ScoringMethod = "numeric"

	// MethodFormat checks structural constraints: word counts, line counts,
	// casing, or membership in a small answer set.
	MethodFormat ScoringMethod = "format"

	// MethodCreative checks sentence, word, or line counts for creative
	// writing, with partial credit near the target.
	MethodCreative ScoringMethod = "creative_structure"

	// MethodCode checks for the presence of keywords expected in a code
	// answer, with graded credit by coverage.
	MethodCode ScoringMethod = "code_check"
)

// Constraints carries the method-specific parameters of a test. Zero fields
// are ignored by the scorers that do not use them.
type Constraints struct {
	// Words, when positive, requires exactly this many words.
	Words int `json:"words,omitempty"`

	// Items, when positive, requires exactly this many lines or
	// comma-separated items.
	Items int `json:"items,omitempty"`

	// Sentences, when positive, requires exactly this many sentences.
	Sentences int `json:"sentences,omitempty"`

	// Lines, when positive, requires exactly this many lines, accepting
	// either newlines or slashes as separators.
	Lines int `json:"lines,omitempty"`

	// MaxWords caps the response length for sentence-constrained tests.
	// Exceeding it downgrades a structural pass to partial credit.
	MaxWords int `json:"max_words,omitempty"`

	// AllCaps requires every alphabetic character to be uppercase.
	AllCaps bool `json:"all_caps,omitempty"`

	// OneOf requires the normalized response to equal one of these values.
	OneOf []string `json:"one_of,omitempty"`

	// Sequence requires the integers extracted from the response to equal
	// exactly this sequence.
	Sequence []int `json:"sequence,omitempty"`

	// Keywords are the terms a code answer is expected to contain.
	Keywords []string `json:"keywords,omitempty"`

	// Tolerance is the relative tolerance for numeric matches. Zero means
	// the default of 1%.
	Tolerance float64 `json:"tolerance,omitempty"`
}

// Test is a single prompt with its scoring rule.
type Test struct {
	ID          string        `json:"id"`
	Category    Category      `json:"category"`
	Prompt      string        `json:"prompt"`
	Expected    string        `json:"expected,omitempty"`
	Method      ScoringMethod `json:"scoring_method"`
	Description string        `json:"description,omitempty"`
	Difficulty  int           `json:"difficulty,omitempty"`
	Constraints Constraints   `json:"constraints,omitempty"`
}

// Default returns the standard battery. The order is fixed so runs remain
// comparable across time.
func Default() []Test {
	return []Test{
		// Math: easy to verify, historically drift-prone.
		{
			ID:          "math_001",
			Category:    CategoryMath,
			Prompt:      "What is 247 + 389? Reply with just the number.",
			Expected:    "636",
			Method:      MethodExact,
			Description: "Simple addition",
			Difficulty:  1,
		},
		{
			ID:          "math_002",
			Category:    CategoryMath,
			Prompt:      "What is 15% of 240? Reply with just the number.",
			Expected:    "36",
			Method:      MethodNumeric,
			Description: "Percentage calculation",
			Difficulty:  2,
		},
		{
			ID:          "math_003",
			Category:    CategoryMath,
			Prompt:      "If a train travels 120 miles in 2 hours, what is its average speed in miles per hour? Reply with just the number.",
			Expected:    "60",
			Method:      MethodNumeric,
			Description: "Speed word problem",
			Difficulty:  2,
		},
		{
			ID:          "math_004",
			Category:    CategoryMath,
			Prompt:      "What is 17 × 23? Reply with just the number.",
			Expected:    "391",
			Method:      MethodExact,
			Description: "Two-digit multiplication",
			Difficulty:  2,
		},
		{
			ID:          "math_005",
			Category:    CategoryMath,
			Prompt:      "A shirt costs $45. It's on sale for 20% off. What is the sale price in dollars? Reply with just the number.",
			Expected:    "36",
			Method:      MethodNumeric,
			Description: "Discount calculation",
			Difficulty:  2,
		},
		{
			ID:          "math_006",
			Category:    CategoryMath,
			Prompt:      "What is the square root of 144? Reply with just the number.",
			Expected:    "12",
			Method:      MethodExact,
			Description: "Square root",
			Difficulty:  1,
		},

		// Reasoning: classic failure modes, stable correct answers.
		{
			ID:          "reason_001",
			Category:    CategoryReasoning,
			Prompt:      "All roses are flowers. Some flowers fade quickly. Can we conclude that some roses fade quickly? Answer yes or no.",
			Expected:    "no",
			Method:      MethodExact,
			Description: "Syllogism validity",
			Difficulty:  3,
		},
		{
			ID:          "reason_008",
			Category:    CategoryReasoning,
			Prompt:      "Which weighs more: a pound of feathers or a pound of steel? Answer in one word.",
			Expected:    "same",
			Method:      MethodExact,
			Description: "Equal weights trick question",
			Difficulty:  2,
		},
		{
			ID:          "common_003",
			Category:    CategoryReasoning,
			Prompt:      "In which board game do players buy properties and charge rent? Reply with just the name.",
			Expected:    "monopoly",
			Method:      MethodExact,
			Description: "Common knowledge recall",
			Difficulty:  1,
		},

		// Factual: historical facts do not change.
		{
			ID:          "fact_001",
			Category:    CategoryFactual,
			Prompt:      "What is the capital of France? Reply with just the city name.",
			Expected:    "Paris",
			Method:      MethodExact,
			Description: "Geography recall",
			Difficulty:  1,
		},
		{
			ID:          "fact_002",
			Category:    CategoryFactual,
			Prompt:      "In what year did World War II end? Reply with just the year.",
			Expected:    "1945",
			Method:      MethodExact,
			Description: "Historical date recall",
			Difficulty:  1,
		},
		{
			ID:          "fact_003",
			Category:    CategoryFactual,
			Prompt:      "What is the chemical symbol for gold? Reply with just the symbol.",
			Expected:    "Au",
			Method:      MethodExact,
			Description: "Chemistry recall",
			Difficulty:  1,
		},
		{
			ID:          "fact_004",
			Category:    CategoryFactual,
			Prompt:      "How many planets are in our solar system? Reply with just the number.",
			Expected:    "8",
			Method:      MethodNumeric,
			Description: "Astronomy recall",
			Difficulty:  1,
		},

		// Consistency: the same fact asked a different way.
		{
			ID:          "consist_001",
			Category:    CategoryConsistency,
			Prompt:      "Paris is the capital of which country? Reply with just the country name.",
			Expected:    "France",
			Method:      MethodExact,
			Description: "Geography recall, inverted phrasing",
			Difficulty:  1,
		},
		{
			ID:          "consist_002",
			Category:    CategoryConsistency,
			Prompt:      "What do you get when you add 389 to 247? Reply with just the number.",
			Expected:    "636",
			Method:      MethodNumeric,
			Description: "Addition, inverted phrasing",
			Difficulty:  1,
		},

		// Instruction: format compliance.
		{
			ID:          "instr_001",
			Category:    CategoryInstruction,
			Prompt:      "List exactly 3 colors, one per line. Nothing else.",
			Method:      MethodFormat,
			Description: "Exact item count",
			Difficulty:  2,
			Constraints: Constraints{Items: 3},
		},
		{
			ID:          "instr_002",
			Category:    CategoryInstruction,
			Prompt:      "Describe the ocean in a single word.",
			Method:      MethodFormat,
			Description: "Single word response",
			Difficulty:  2,
			Constraints: Constraints{Words: 1},
		},
		{
			ID:          "instr_003",
			Category:    CategoryInstruction,
			Prompt:      "Describe a sunset in exactly 5 words.",
			Method:      MethodFormat,
			Description: "Exact word count",
			Difficulty:  3,
			Constraints: Constraints{Words: 5},
		},
		{
			ID:          "instr_006",
			Category:    CategoryInstruction,
			Prompt:      "Write the sentence 'the quick brown fox' in all capital letters.",
			Method:      MethodFormat,
			Description: "All caps constraint",
			Difficulty:  1,
			Constraints: Constraints{AllCaps: true},
		},
		{
			ID:          "instr_007",
			Category:    CategoryInstruction,
			Prompt:      "Is water wet? Answer with only the word yes or the word no.",
			Method:      MethodFormat,
			Description: "Closed answer set",
			Difficulty:  1,
			Constraints: Constraints{OneOf: []string{"yes", "no"}},
		},
		{
			ID:          "instr_008",
			Category:    CategoryInstruction,
			Prompt:      "Write the numbers from 10 down to 6, separated by commas.",
			Method:      MethodFormat,
			Description: "Descending sequence",
			Difficulty:  2,
			Constraints: Constraints{Sequence: []int{10, 9, 8, 7, 6}},
		},

		// Creative: structure is checkable even when content is open-ended.
		{
			ID:          "creative_001",
			Category:    CategoryCreative,
			Prompt:      "Write a story about a lighthouse in exactly 2 sentences, at most 40 words total.",
			Method:      MethodCreative,
			Description: "Sentence-constrained story",
			Difficulty:  3,
			Constraints: Constraints{Sentences: 2, MaxWords: 40},
		},
		{
			ID:          "creative_002",
			Category:    CategoryCreative,
			Prompt:      "Write a haiku about autumn. Put each of the three lines on its own line.",
			Method:      MethodCreative,
			Description: "Haiku line structure",
			Difficulty:  3,
			Constraints: Constraints{Lines: 3},
		},
		{
			ID:          "creative_003",
			Category:    CategoryCreative,
			Prompt:      "Describe rain in exactly 10 words.",
			Method:      MethodCreative,
			Description: "Word-constrained description",
			Difficulty:  3,
			Constraints: Constraints{Words: 10},
		},

		// Code: keyword coverage instead of execution.
		{
			ID:          "code_001",
			Category:    CategoryCode,
			Prompt:      "Write a Python function that returns the factorial of a number using recursion.",
			Method:      MethodCode,
			Description: "Recursive factorial",
			Difficulty:  3,
			Constraints: Constraints{Keywords: []string{"def", "factorial", "return", "if"}},
		},
		{
			ID:          "code_002",
			Category:    CategoryCode,
			Prompt:      "Write a SQL query that selects the name column from a users table where age is greater than 30.",
			Method:      MethodCode,
			Description: "Basic SQL select",
			Difficulty:  2,
			Constraints: Constraints{Keywords: []string{"select", "from", "users", "where"}},
		},
	}
}

// Valid reports whether the method is one of the known scoring methods.
func (m ScoringMethod) Valid() bool {
	switch m {
	case MethodExact, MethodNumeric, MethodFormat, MethodCreative, MethodCode:
		return true
	}
	return false
}

// Validate checks a battery before it is run: every test needs a unique,
// non-empty id and a known scoring method. A bad method is rejected here
// instead of silently scoring every response 0.
func Validate(tests []Test) error {
	seen := make(map[string]bool, len(tests))
	for _, t := range tests {
		if t.ID == "" {
			return errors.New("test with empty id")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate test id %s", t.ID)
		}
		seen[t.ID] = true
		if !t.Method.Valid() {
			return fmt.Errorf("test %s: unknown scoring method %q", t.ID, t.Method)
		}
	}
	return nil
}

// ByCategory filters tests to one category, preserving order.
func ByCategory(tests []Test, c Category) []Test {
	var out []Test
	for _, t := range tests {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}
