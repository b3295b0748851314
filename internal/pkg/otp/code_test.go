package otp

import (
	"strings"
	"testing"

	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
)

func TestCodeGeneratorGenerate(t *testing.T) {
	g := NewCodeGenerator()

	for _, length := range []int{4, 6, 8, 10} {
		code, err := g.Generate(length)
		if err != nil {
			t.Fatalf("Generate(%d): %v", length, err)
		}
		if len(code) != length {
			t.Fatalf("len = %d, want %d", len(code), length)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q has non-digit %q", code, r)
			}
		}
	}
}

func TestCodeGeneratorDistribution(t *testing.T) {
	const samples = 10000
	g := NewCodeGenerator()

	counts := make(map[string]int, samples)
	var digits [10]int
	for range samples {
		code, err := g.Generate(6)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		counts[code]++
		for i := range len(code) {
			digits[code[i]-'0']++
		}
	}

	// 10,000 draws from 10^6 values: a value seen five times is practically
	// impossible for a uniform source.
	for code, n := range counts {
		if n > 4 {
			t.Fatalf("code %s generated %d times", code, n)
		}
	}

	// each digit is expected 6,000 times; 360 is roughly five standard deviations
	const expected = samples * 6 / 10
	for d, n := range digits {
		if n < expected-360 || n > expected+360 {
			t.Errorf("digit %d appeared %d times, expected about %d", d, n, expected)
		}
	}
}

func TestCodeGeneratorAlphanumeric(t *testing.T) {
	g := NewCodeGenerator(WithCharset(CharsetAlphanumeric))

	code, err := g.Generate(10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, r := range code {
		if !strings.ContainsRune(CharsetAlphanumeric, r) {
			t.Fatalf("code %q has %q outside charset", code, r)
		}
	}
}

func TestValidateCharset(t *testing.T) {
	tests := []struct {
		name    string
		charset string
		wantErr bool
	}{
		{name: "Numeric", charset: CharsetNumeric},
		{name: "Alphanumeric", charset: CharsetAlphanumeric},
		{name: "Binary", charset: "01"},
		{name: "TooShort", charset: "7", wantErr: true},
		{name: "Empty", charset: "", wantErr: true},
		{name: "MultiByte", charset: "0123456789é", wantErr: true},
		{name: "Space", charset: "01 23", wantErr: true},
		{name: "Duplicate", charset: "0123456789A0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := ValidateCharset(tt.charset)

			// Assert
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !goerror.IsCode(err, goerror.CodeInvalidParameter) {
				t.Fatalf("err = %v, want invalid parameter", err)
			}
		})
	}
}

func TestCodeGeneratorRejectsBadCharset(t *testing.T) {
	for _, charset := range []string{"日本語数字", "0012"} {
		// Arrange
		g := NewCodeGenerator(WithCharset(charset))

		// Act
		code, err := g.Generate(6)

		// Assert
		if !goerror.IsCode(err, goerror.CodeInvalidParameter) || code != "" {
			t.Errorf("charset %q: code = %q, err = %v", charset, code, err)
		}
	}
}

func TestCodeGeneratorEmptyCharsetKeepsDefault(t *testing.T) {
	code, err := NewCodeGenerator(WithCharset("")).Generate(6)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Trim(code, CharsetNumeric) != "" {
		t.Fatalf("code %q is not numeric", code)
	}
}

func TestCodeGeneratorInvalidLength(t *testing.T) {
	g := NewCodeGenerator()
	for _, length := range []int{-1, 0, 3, 11} {
		if _, err := g.Generate(length); !goerror.IsCode(err, goerror.CodeInvalidParameter) {
			t.Errorf("Generate(%d) err = %v, want invalid parameter", length, err)
		}
	}
}

func TestCodeGeneratorEntropyFailure(t *testing.T) {
	g := NewCodeGenerator(WithCodeRand(failingReader{}))
	if _, err := g.Generate(6); !goerror.IsCode(err, goerror.CodeEntropySource) {
		t.Fatalf("err = %v, want entropy source error", err)
	}
}
