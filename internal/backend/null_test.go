package backend

import "testing"

func TestNullClaimsOnlyItsScheme(t *testing.T) {
	n := NewNull(false)
	cases := []struct {
		spec string
		want bool
	}{
		{"null:anything", true},
		{"osc:host:1234", false},
		{"bare name", false},
	}
	for _, c := range cases {
		got, err := n.CreateInPort(0, c.spec)
		if err != nil {
			t.Fatalf("%s: %v", c.spec, err)
		}
		if got != c.want {
			t.Errorf("claim %q = %v, want %v", c.spec, got, c.want)
		}
	}
}

func TestNullAsFallbackClaimsAnything(t *testing.T) {
	n := NewNull(true)
	for _, spec := range []string{"null:x", "osc:host:1234", "bare name"} {
		got, err := n.CreateOutPort(0, spec)
		if err != nil {
			t.Fatalf("%s: %v", spec, err)
		}
		if !got {
			t.Errorf("fallback declined %q", spec)
		}
	}
}
