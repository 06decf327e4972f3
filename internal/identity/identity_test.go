package identity

import "testing"

func TestCanonEmail_CaseAndWhitespace(t *testing.T) {
	if got := CanonEmail(" A@B.com "); got != "a@b.com" {
		t.Fatalf("CanonEmail: got=%q", got)
	}
	if CanonEmail(" A@B.com ") != CanonEmail("a@b.com") {
		t.Fatalf("variants should collapse to one key")
	}
}

func TestCanonEmail_Idempotent(t *testing.T) {
	in := "  MixedCase@Example.COM "
	once := CanonEmail(in)
	if CanonEmail(once) != once {
		t.Fatalf("CanonEmail not idempotent: %q vs %q", CanonEmail(once), once)
	}
}

func TestCanonName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  aNA   maria ", "Ana Maria"},
		{"HASSAN", "Hassan"},
		{"", ""},
		{"  ", ""},
		{"joão pedro", "João Pedro"},
	}
	for _, c := range cases {
		if got := CanonName(c.in); got != c.want {
			t.Fatalf("CanonName(%q): got=%q want=%q", c.in, got, c.want)
		}
	}
}
