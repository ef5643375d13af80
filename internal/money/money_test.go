package money

import (
	"errors"
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	if got, err := Add(250, 750); err != nil || got != 1000 {
		t.Errorf("Add(250, 750) = %d, %v; want 1000", got, err)
	}
	if _, err := Add(math.MaxInt64, 1); !errors.Is(err, ErrOverflow) {
		t.Errorf("Add(MaxInt64, 1) error = %v, want ErrOverflow", err)
	}
	if _, err := Add(math.MinInt64, -1); !errors.Is(err, ErrOverflow) {
		t.Errorf("Add(MinInt64, -1) error = %v, want ErrOverflow", err)
	}
}

func TestSum(t *testing.T) {
	got, err := Sum(334, 333, 333)
	if err != nil || got != 1000 {
		t.Errorf("Sum = %d, %v; want 1000", got, err)
	}
	if _, err := Sum(math.MaxInt64, 1, -5); !errors.Is(err, ErrOverflow) {
		t.Errorf("Sum overflow error = %v", err)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		minor    int64
		currency string
		want     string
	}{
		{123450, "CNY", "1234.50 CNY"},
		{5, "usd", "0.05 USD"},
		{-250, "EUR", "-2.50 EUR"},
		{1500, "JPY", "1500 JPY"},
		{1234, "KWD", "1.234 KWD"},
		{100, "", "1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Format(tt.minor, tt.currency); got != tt.want {
				t.Errorf("Format(%d, %q) = %q, want %q", tt.minor, tt.currency, got, tt.want)
			}
		})
	}
}

func TestParseMajor(t *testing.T) {
	tests := []struct {
		in       string
		currency string
		want     int64
		wantErr  bool
	}{
		{"12.34", "USD", 1234, false},
		{"12", "USD", 1200, false},
		{" 0.5 ", "EUR", 50, false},
		{"1500", "JPY", 1500, false},
		{"12.345", "USD", 0, true},
		{"15.5", "JPY", 0, true},
		{"abc", "USD", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in+"_"+tt.currency, func(t *testing.T) {
			got, err := ParseMajor(tt.in, tt.currency)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMajor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMajor(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidCurrency(t *testing.T) {
	for code, want := range map[string]bool{
		"CNY":  true,
		"JPY":  true,
		"cny":  false,
		"CN":   false,
		"CNYY": false,
		"C1Y":  false,
		"":     false,
	} {
		if got := ValidCurrency(code); got != want {
			t.Errorf("ValidCurrency(%q) = %v, want %v", code, got, want)
		}
	}
}
