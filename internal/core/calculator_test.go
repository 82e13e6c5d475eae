package core_test

import (
	"testing"

	"catalog-agent/internal/core"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"what is 5 plus 3", true},
		{"5 + 3", true},
		{"show me tumblers", false},
		{"it", false},
		{"calculate 10", true},
		{"how many outlets in Selangor", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := core.DetectIntent(tt.text)
			if got.HasIntent != tt.want {
				t.Errorf("DetectIntent(%q) = %v, want %v (reason: %s)", tt.text, got.HasIntent, tt.want, got.Reason)
			}
		})
	}
}

func TestParseAndCalculate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantOk    bool
		wantValue float64
		wantKind  core.CalcErrorKind
	}{
		{"simple addition", "what is 5 plus 3", true, 8, ""},
		{"bare expression", "5 + 3", true, 8, ""},
		{"precedence", "2 + 3 * 4", true, 14, ""},
		{"power right assoc", "2 ** 3 ** 2", true, 512, ""},
		{"parens", "(2 + 3) * 4", true, 20, ""},
		{"divide by zero", "100 divided by 0", false, 0, core.CalcErrorDivideByZero},
		{"modulo by zero", "10 % 0", false, 0, core.CalcErrorDivideByZero},
		{"no expression", "show me tumblers", false, 0, core.CalcErrorNoExpression},
		{"word trigger times", "4 times 5", true, 20, ""},
		{"word trigger multiplied by", "4 multiplied by 5", true, 20, ""},
		{"word trigger divided by phrase", "20 divided by 4", true, 5, ""},
		{"unary minus", "-5 + 10", true, 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ParseAndCalculate(tt.text)
			if got.Ok != tt.wantOk {
				t.Fatalf("Ok = %v, want %v (err=%v %v)", got.Ok, tt.wantOk, got.ErrorKind, got.ErrorMessage)
			}
			if tt.wantOk && got.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", got.Value, tt.wantValue)
			}
			if !tt.wantOk && got.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %v, want %v", got.ErrorKind, tt.wantKind)
			}
			if !got.Ok && got.Value != 0 {
				t.Errorf("CalcResult with ok=false must not carry a value, got %v", got.Value)
			}
		})
	}
}

func TestParseAndCalculate_InvalidChars(t *testing.T) {
	got := core.ParseAndCalculate("what is the meaning of life; DROP TABLE users")
	if got.Ok {
		t.Fatalf("expected failure, got ok with value %v", got.Value)
	}
}

func TestCalcResult_RoundTrip(t *testing.T) {
	exprs := []string{"5 + 3", "2 * 3 + 4", "10 / 2"}
	for _, e := range exprs {
		first := core.ParseAndCalculate(e)
		again := core.ParseAndCalculate(first.Formatted)
		if !first.Ok || !again.Ok {
			t.Fatalf("expected both evaluations ok for %q", e)
		}
		if first.Value != again.Value {
			t.Errorf("round-trip mismatch for %q: %v != %v", e, first.Value, again.Value)
		}
	}
}
