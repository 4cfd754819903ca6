package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"title stripped", "Mr Rahul Sharma", "RAHUL SHARMA"},
		{"kinship tokens stripped", "Smt Sunita Devi", "SUNITA"},
		{"punctuation stripped", "R.K. Sharma", "RK SHARMA"},
		{"kumar stripped whole-word only", "Rajkumar Singh", "RAJKUMAR SINGH"},
		{"spaces collapse", "  RAHUL    SHARMA ", "RAHUL SHARMA"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Mr Rahul Sharma",
		"Smt. SUNITA DEVI",
		"anil kr santhalia",
		"  spaced   out  name ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
