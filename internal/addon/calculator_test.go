package addon

import "testing"

func TestCalculatorEvaluates(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2+2", "4"},
		{"sqrt(16)", "4"},
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"2^10", "1024"},
		{"2^-1", "0.5"},
		{"10 % 3", "1"},
		{"-5 + 2", "-3"},
		{"abs(-7)", "7"},
		{"floor(3.9)", "3"},
		{"ceil(3.1)", "4"},
		{"ln(exp(1))", "1"},
		{"log(100)", "2"},
		{"cos(0)", "1"},
		{"1.5*2", "3"},
		{"0.1+0.2", "0.3"},
	}

	var calc Calculator
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			item, ok := calc.TryEvaluate(tt.input)
			if !ok {
				t.Fatalf("TryEvaluate(%q) declined", tt.input)
			}
			if item.Value != tt.want {
				t.Fatalf("TryEvaluate(%q) = %q, want %q", tt.input, item.Value, tt.want)
			}
			if item.Title != tt.input+" = "+tt.want {
				t.Fatalf("title %q should embed expression and result", item.Title)
			}
			if item.Action.Kind != ActionCopy || item.Action.Text != tt.want {
				t.Fatalf("activation should copy the result, got %+v", item.Action)
			}
		})
	}
}

func TestCalculatorDeclines(t *testing.T) {
	inputs := []string{
		"",
		"firefox",
		"1/0",
		"10 % 0",
		"2+",
		"(2+3",
		"sqrt(-1)",
		"sqrt 16",
		"foo(3)",
		"2..5 + 1",
		"ln(0)",
		"42",    // bare number: leave numeric-named entries reachable
		"3.14",  // same for bare decimals
		"tz 10", // script-filter style input must fall through
	}

	var calc Calculator
	for _, input := range inputs {
		if _, ok := calc.TryEvaluate(input); ok {
			t.Fatalf("TryEvaluate(%q) should decline", input)
		}
	}
}
