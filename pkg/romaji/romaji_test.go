package romaji

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"toukyou", "tokyo"},
		{"Tokyo", "tokyo"},
		{"OOSAKA", "osaka"},
		{"juu", "ju"},
		{"sen-sei", "sensei"},
		{"jun'ichi", "junichi"},
		{"  konnichiwa  ", "konnichiwa"},
		{"ohayou gozaimasu", "ohayogozaimasu"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEquivalent(t *testing.T) {
	if !Equivalent("toukyou", "tokyo") {
		t.Error("expected toukyou and tokyo to be equivalent")
	}
	if !Equivalent("Kyouto", "kyoto") {
		t.Error("expected Kyouto and kyoto to be equivalent")
	}
	if Equivalent("kawa", "kami") {
		t.Error("kawa and kami must not be equivalent")
	}
}
