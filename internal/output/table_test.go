package output

import (
	"strings"
	"testing"
)

func TestVisualLen_PlainText(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"gpt4o", 5},
		{"", 0},
		{"abc def", 7},
	}

	for _, tc := range tests {
		got := visualLen(tc.input)
		if got != tc.want {
			t.Errorf("visualLen(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestVisualLen_StripsANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "bold",
			input: "\x1b[1mhello\x1b[0m",
			want:  5,
		},
		{
			name:  "color",
			input: "\x1b[31mred\x1b[0m",
			want:  3,
		},
		{
			name:  "multiple sequences",
			input: "\x1b[1m\x1b[34mblue bold\x1b[0m",
			want:  9,
		},
		{
			name:  "no ansi",
			input: "plain text",
			want:  10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := visualLen(tc.input)
			if got != tc.want {
				t.Errorf("visualLen() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  int // expected length of output
	}{
		{"needs padding", "hi", 10, 10},
		{"exact width", "hello", 5, 5},
		{"over width", "toolong", 3, 7}, // no truncation
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pad(tc.input, tc.width)
			if len(got) != tc.want {
				t.Errorf("pad(%q, %d) len = %d, want %d", tc.input, tc.width, len(got), tc.want)
			}
		})
	}
}

func TestTable_Render(t *testing.T) {
	// Disable color so we get predictable output.
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Model", "Mean", "Severity")
	tbl.AddRow("gpt4o", "0.78", "major")
	tbl.AddRow("mistral-small", "0.91", "none")

	output := tbl.Render()

	// Should contain headers.
	if !strings.Contains(output, "Model") {
		t.Error("expected header 'Model' in output")
	}
	if !strings.Contains(output, "Severity") {
		t.Error("expected header 'Severity' in output")
	}

	// Should contain data.
	if !strings.Contains(output, "gpt4o") {
		t.Error("expected 'gpt4o' in output")
	}
	if !strings.Contains(output, "mistral-small") {
		t.Error("expected 'mistral-small' in output")
	}

	// Should have separator line.
	if !strings.Contains(output, "─") {
		t.Error("expected separator character in output")
	}

	// Count lines: header + separator + 2 data rows = 4 lines.
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d", len(lines))
	}
}

func TestTable_EmptyHeaders(t *testing.T) {
	tbl := NewTable()
	output := tbl.Render()
	if output != "" {
		t.Errorf("expected empty output for empty table, got %q", output)
	}
}

func TestTable_StyledCellsAlign(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("A", "LongHeader")
	// A cell with ANSI styling must not inflate the column width.
	tbl.AddRow("\x1b[31mVeryLongValue\x1b[0m", "X")

	output := tbl.Render()
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	if len(lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[2], "VeryLongValue") {
		t.Error("expected data row to contain 'VeryLongValue'")
	}
	if visualLen(lines[1]) != visualLen(lines[2]) {
		t.Errorf("separator width %d != data row width %d",
			visualLen(lines[1]), visualLen(lines[2]))
	}
}

func TestTable_String(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Col1")
	tbl.AddRow("Val1")

	// String() should equal Render().
	if tbl.String() != tbl.Render() {
		t.Error("String() != Render()")
	}
}

func TestSetNoColor(t *testing.T) {
	// After SetNoColor(true), StyleHeader should render without ANSI.
	SetNoColor(true)
	rendered := StyleHeader.Render("test")
	if strings.Contains(rendered, "\x1b[") {
		t.Error("expected no ANSI codes after SetNoColor(true)")
	}

	// After SetNoColor(false), we restore — but note: the original styles
	// are lost since SetNoColor only sets to plain. We just verify no crash
	// and that the function is idempotent.
	SetNoColor(false)
}

func TestScoreBar(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	bar := ScoreBar(0.8, 10)
	if !strings.Contains(bar, "0.80") {
		t.Errorf("expected the numeric score in the bar, got %q", bar)
	}
	if strings.Count(bar, "█") != 8 {
		t.Errorf("expected 8 filled cells for 0.8 at width 10, got %q", bar)
	}

	empty := ScoreBar(0, 10)
	if strings.Count(empty, "░") != 10 {
		t.Errorf("expected an empty bar for score 0, got %q", empty)
	}

	full := ScoreBar(1.5, 10)
	if strings.Count(full, "█") != 10 {
		t.Errorf("expected a clamped full bar, got %q", full)
	}
}

func TestSeverityBadge(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	cases := map[string]string{
		"major":    "MAJOR",
		"moderate": "MODERATE",
		"minor":    "minor",
		"none":     "none",
		"":         "none",
	}
	for in, want := range cases {
		if got := SeverityBadge(in); got != want {
			t.Errorf("SeverityBadge(%q) = %q, want %q", in, got, want)
		}
	}
}
