package entity

import "testing"

func TestClassifyDestination(t *testing.T) {
	cases := []struct {
		in   string
		want DestinationKind
	}{
		{"user@example.com", KindEmail},
		{" user@example.com ", KindEmail},
		{"+15550001111", KindMobile},
		{"15550001111", KindMobile},
		{"", KindUnknown},
		{"not-an-address", KindUnknown},
		{"Dana <user@example.com>", KindUnknown},
		{"+1555", KindUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyDestination(tc.in); got != tc.want {
			t.Fatalf("ClassifyDestination(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestUniqueProperty(t *testing.T) {
	for _, p := range []UniqueProperty{PropertyEmail, PropertyMobile, PropertyUsername} {
		if !p.IsValid() {
			t.Fatalf("%q must be valid", p)
		}
	}
	if UniqueProperty("nickname").IsValid() {
		t.Fatalf("unknown property must be invalid")
	}
}
