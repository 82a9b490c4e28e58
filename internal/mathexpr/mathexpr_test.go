package mathexpr

import (
	"math"
	"testing"
)

func TestWordsToNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"negative ten", "-10"},
		{"one hundred million and two", "100000002"},
		{"three quarters", "0.75"},
		{"two and a half", "2.5"},
		{"twenty-one", "21"},
		{"two hundred and five", "205"},
		{"1 million", "1000000"},
		{"set it to seven", "set it to 7"},
		{"seven apples", "7 apples"},
		{"no numbers here", "no numbers here"},
	}

	for _, c := range cases {
		got := wordsToNumber(c.in)
		if got != c.want {
			t.Errorf("wordsToNumber(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"what is 12 times 3 plus 5", "12 * 3 + 5"},
		{"subtract 4 from 10", "(10 - 4)"},
		{"15 percent of 80", "(15/100)*(80)"},
		{"7 squared", "7 **2"},
	}

	for _, c := range cases {
		got, err := Normalize(c.in)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeRejectsDisallowedCharacters(t *testing.T) {
	if _, err := Normalize("2 + €"); err == nil {
		t.Error("Expected error for disallowed characters")
	}
}

func TestBestWindow(t *testing.T) {
	w, ok := bestWindow("finally home hey jarvis calculate 7 to the power of 4")
	if !ok {
		t.Fatal("Expected a math window")
	}
	if w != "7 to the power of 4" {
		t.Errorf("Expected window '7 to the power of 4', got %q", w)
	}

	w, ok = bestWindow("what is 1 million - 1")
	if !ok {
		t.Fatal("Expected a math window")
	}
	if w != "1 million - 1" {
		t.Errorf("Expected window '1 million - 1', got %q", w)
	}
}

func TestTryCalculate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"what is 12 times 3 plus 5", 41},
		{"whats 12 times 3 plus 5", 41},
		{"12 times 3 plus 5", 41},
		{"two hundred and five divided by 5", 41},
		{"15 percent of 80", 12},
		{"7 to the power of 4", 2401},
		{"finally home hey jarvis calculate 7 to the power of 4", 2401},
		{"7 squared", 49},
		{"what's 1 + 1", 2},
		{"whats 10 + 10", 20},
		{"1 million minus 1", 999999},
		{"one hundred million plus one", 100000001},
		{"one hundred plus one", 101},
		{"negative 10 plus 10", 0},
		{"negative 10 minus ten", -20},
		{"-10 minus 10", -20},
		{"-10 plus 10", 0},
		{"-10 mins 10", -20},
		{"subtract 4 from 10", 6},
		{"take 4 away from 10", 6},
		{"add 4 to 10", 14},
		{"multiply 3 by 4", 12},
		{"divide 10 by 2", 5},
		{"difference between 9 and 2", 7},
		{"absolute difference between 2 and 9", 7},
		{"twenty-one plus eight", 29},
		{"three quarters plus a half", 1.25},
		{"open bracket five plus three close bracket times two", 16},
		{"log10(1000)", 3},
		{"round(2.7)", 3},
		{"abs(-5) + tau / pi", 7},
		{"cube root of 27", 3},
	}

	for _, c := range cases {
		got, ok := TryCalculate(c.in)
		if !ok {
			t.Errorf("TryCalculate(%q) failed, want %v", c.in, c.want)
			continue
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("TryCalculate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTryCalculateSquareRoot(t *testing.T) {
	got, ok := TryCalculate("square root of 2")
	if !ok {
		t.Fatal("TryCalculate failed for square root of 2")
	}
	if math.Abs(got-math.Sqrt2) > 1e-9 {
		t.Errorf("Expected sqrt(2), got %v", got)
	}
}

func TestTryCalculateNonMath(t *testing.T) {
	for _, in := range []string{"turn on the office lamp", "what's the weather in paris", ""} {
		if v, ok := TryCalculate(in); ok {
			t.Errorf("TryCalculate(%q) = %v, expected no result", in, v)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	for _, expr := range []string{"1/0", "5 % 0", "import(1)", "x + 1", "sqrt(-1)"} {
		if _, err := Evaluate(expr); err == nil {
			t.Errorf("Evaluate(%q) succeeded, expected error", expr)
		}
	}
}
