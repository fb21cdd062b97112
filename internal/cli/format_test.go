package cli

import "testing"

func TestFormatHours(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{7.5, "7.5h"},
		{8, "8h"},
		{1234.2, "1,234h"},
		{0, "0h"},
	}
	for _, c := range cases {
		if got := FormatHours(c.in); got != c.want {
			t.Errorf("FormatHours(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{12.345, "$12.35"},
		{150, "$150"},
		{12500, "$12,500"},
		{-150, "-$150"},
	}
	for _, c := range cases {
		if got := FormatCurrency(c.in); got != c.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatOptPercent(t *testing.T) {
	if got := FormatOptPercent(nil); got != Missing {
		t.Errorf("FormatOptPercent(nil) = %q, want %q", got, Missing)
	}
	v := 0.423
	if got := FormatOptPercent(&v); got != "42.3%" {
		t.Errorf("FormatOptPercent(0.423) = %q, want 42.3%%", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q, want 1,234,567", got)
	}
	if got := FormatNumber(-4200); got != "-4,200" {
		t.Errorf("FormatNumber = %q, want -4,200", got)
	}
}
