package logger

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"client@example.com", "c*****@example.com"},
		{"a@example.com", "*@example.com"},
		{"  padded@example.com ", "p*****@example.com"},
		{"not-an-email", "********mail"},
	}
	for _, tc := range cases {
		if got := MaskEmail(tc.in); got != tc.want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("hunter2secret"); got != "*********cret" {
		t.Fatalf("MaskSecret = %q", got)
	}
	if got := MaskSecret("abc"); got != "***" {
		t.Fatalf("short secret should be fully masked, got %q", got)
	}
	if got := MaskSecret(""); got != "" {
		t.Fatalf("empty secret should stay empty, got %q", got)
	}
}
