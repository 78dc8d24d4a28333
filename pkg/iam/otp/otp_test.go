package otp_test

import (
	"testing"

	"github.com/pressroom-io/pressroom/pkg/iam/otp"
)

func TestGenerateCodeLengthAndCharset(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := otp.GenerateCode(6)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
	}
}

func TestGenerateTokenIsOpaqueHex(t *testing.T) {
	a, err := otp.GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := otp.GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatal("two tokens must not collide")
	}
}

func TestMaskEmail(t *testing.T) {
	cases := []struct{ in, want string }{
		{"editor@example.com", "ed****@example.com"},
		{"ab@example.com", "a*@example.com"},
		{"a@example.com", "a@example.com"},
		{"no-at-sign", "****"},
		{"", "****"},
	}
	for _, tc := range cases {
		if got := otp.MaskEmail(tc.in); got != tc.want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
