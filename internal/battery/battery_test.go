package battery

import "testing"

func TestDefaultBattery(t *testing.T) {
	tests := Default()
	if len(tests) == 0 {
		t.Fatal("battery is empty")
	}
	if err := Validate(tests); err != nil {
		t.Fatalf("default battery does not validate: %v", err)
	}

	seen := make(map[string]bool)
	for _, tc := range tests {
		if tc.ID == "" {
			t.Error("test with empty id")
		}
		if seen[tc.ID] {
			t.Errorf("duplicate test id %q", tc.ID)
		}
		seen[tc.ID] = true

		if tc.Prompt == "" {
			t.Errorf("%s: empty prompt", tc.ID)
		}
		switch tc.Method {
		case MethodExact, MethodNumeric:
			if tc.Expected == "" {
				t.Errorf("%s: %s scoring needs an expected answer", tc.ID, tc.Method)
			}
		case MethodFormat, MethodCreative:
			c := tc.Constraints
			if c.Words == 0 && c.Items == 0 && c.Sentences == 0 && c.Lines == 0 &&
				!c.AllCaps && len(c.OneOf) == 0 && len(c.Sequence) == 0 {
				t.Errorf("%s: %s scoring needs constraints", tc.ID, tc.Method)
			}
		case MethodCode:
			if len(tc.Constraints.Keywords) == 0 {
				t.Errorf("%s: code scoring needs keywords", tc.ID)
			}
		default:
			t.Errorf("%s: unknown scoring method %q", tc.ID, tc.Method)
		}
	}
}

func TestDefaultBatteryIsStable(t *testing.T) {
	a, b := Default(), Default()
	if len(a) != len(b) {
		t.Fatal("battery length changed between calls")
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("battery order changed at index %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestValidate(t *testing.T) {
	ok := Test{ID: "t1", Method: MethodExact, Expected: "x"}

	cases := []struct {
		name    string
		tests   []Test
		wantErr bool
	}{
		{"valid", []Test{ok}, false},
		{"empty id", []Test{{Method: MethodExact}}, true},
		{"duplicate id", []Test{ok, ok}, true},
		{"unknown method", []Test{{ID: "t2", Method: "rubric"}}, true},
		{"empty battery", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.tests)
			if tc.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestByCategory(t *testing.T) {
	math := ByCategory(Default(), CategoryMath)
	if len(math) == 0 {
		t.Fatal("expected math tests")
	}
	for _, tc := range math {
		if tc.Category != CategoryMath {
			t.Errorf("%s: wrong category %s", tc.ID, tc.Category)
		}
	}
}
