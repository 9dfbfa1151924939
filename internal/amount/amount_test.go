package amount

import (
	"errors"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"0.0000",
		"0.0001",
		"1.0000",
		"3.1400",
		"494475.4876",
		"96658.5182",
		"1000000000.0000",
	}
	for _, s := range cases {
		a, err := Parse(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got := a.String(); got != s {
			t.Fatalf("round trip %q: got %q", s, got)
		}
	}
}

func TestParseNormalizesPrecision(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"3.14", "3.1400"},
		{"3", "3.0000"},
		{"0", "0.0000"},
		{"2.00005", "2.0001"},
		{"2.00004", "2.0000"},
		{"1.99999", "2.0000"},
	}
	for _, c := range cases {
		a, err := Parse(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got := a.String(); got != c.want {
			t.Fatalf("parse %q: expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestParseRejectsNegative(t *testing.T) {
	for _, s := range []string{"-1", "-0.0001", "-3.14"} {
		if _, err := Parse(s); !errors.Is(err, ErrNegativeAmount) {
			t.Fatalf("parse %q: expected ErrNegativeAmount, got %v", s, err)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "abc", "1.2.3", "1,5", "1e", "--1"} {
		if _, err := Parse(s); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("parse %q: expected ErrInvalidAmount, got %v", s, err)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a, _ := Parse("3.1400")
	b, _ := Parse("1.1400")

	if got := a.Add(b).String(); got != "4.2800" {
		t.Fatalf("add: expected 4.2800, got %s", got)
	}
	if got := a.Sub(b).String(); got != "2.0000" {
		t.Fatalf("sub: expected 2.0000, got %s", got)
	}
	if a < b {
		t.Fatalf("expected %s >= %s", a, b)
	}
}
