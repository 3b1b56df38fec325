package matching

import "testing"

func TestSameCity_ArabicEnglishAliases(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"shadda folded", "عمّان", "amman", true},
		{"plain arabic", "عمان", "Amman", true},
		{"definite article", "الزرقاء", "zarqa", true},
		{"free text contains alias", "عمان - الجبيهة", "amman", true},
		{"case and spaces", "  AMMAN ", "amman", true},
		{"different governorates", "irbid", "aqaba", false},
		{"arabic different", "اربد", "عمان", false},
		{"blank never matches", "", "amman", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sameCity(tc.a, tc.b); got != tc.want {
				t.Fatalf("sameCity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestNormalizeCity(t *testing.T) {
	if got := normalizeCity("عمّان"); got != "عمان" {
		t.Fatalf("expected shadda stripped, got %q", got)
	}
	if got := normalizeCity("مأدبا"); got != "مادبا" {
		t.Fatalf("expected alef-hamza folded, got %q", got)
	}
	if got := normalizeCity("  Amman  "); got != "amman" {
		t.Fatalf("expected lowercase trim, got %q", got)
	}
}
