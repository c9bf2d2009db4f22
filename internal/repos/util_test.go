package repos

import (
	"testing"
	"time"
)

func TestParseLenientDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2021-09-15", "2021-09-15", true},
		{"1965-08", "1965-08-01", true},
		{"1965", "1965-01-01", true},
		{"unknown", "", false},
		{"", "", false},
		{"15/09/2021", "", false},
	}
	for _, tc := range cases {
		got := ParseLenientDate(tc.in)
		if !tc.ok {
			if got != nil {
				t.Errorf("ParseLenientDate(%q) = %v, want nil", tc.in, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("ParseLenientDate(%q) = nil, want %s", tc.in, tc.want)
			continue
		}
		if s := got.Format(time.DateOnly); s != tc.want {
			t.Errorf("ParseLenientDate(%q) = %s, want %s", tc.in, s, tc.want)
		}
	}
}
