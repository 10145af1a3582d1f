package binding

import (
	"strings"
	"testing"
)

func TestInterpolate(t *testing.T) {
	data, err := Decode(strings.NewReader(`{"user":{"name":"Ada"},"items":[{"qty":3},{"qty":2.5}]}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	cases := map[string]string{
		"Hello, ${user.name}!":           "Hello, Ada!",
		";${items[0].qty};${items[1].qty}": ";3;2.5",
		"$!${user.name}":                 "$!Ada",
		"${missing.path}":                "${missing.path}",
		"${items[9].qty}":                "${items[9].qty}",
		"${items[x].qty}":                "${items[x].qty}",
		"no placeholders":                "no placeholders",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${a}", nil); got != "${a}" {
		t.Fatalf("nil data must keep placeholders, got %q", got)
	}
}

func TestDecodeError(t *testing.T) {
	if _, err := Decode(strings.NewReader("{")); err == nil {
		t.Fatalf("expected error for truncated JSON")
	}
}
