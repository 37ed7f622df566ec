package domain

import "testing"

func TestPreferencesAccepts(t *testing.T) {
	candidate := Profile{UserID: "c", Age: 25, Gender: GenderFemale, Country: "DE"}

	tests := []struct {
		name  string
		prefs Preferences
		want  bool
	}{
		{"no constraints", Preferences{}, true},
		{"gender match", Preferences{Gender: GenderFemale}, true},
		{"gender mismatch", Preferences{Gender: GenderMale}, false},
		{"country match", Preferences{Country: "DE"}, true},
		{"country mismatch", Preferences{Country: "FR"}, false},
		{"inside age band", Preferences{MinAge: 20, MaxAge: 30}, true},
		{"below min age", Preferences{MinAge: 26}, false},
		{"above max age", Preferences{MaxAge: 24}, false},
		{"boundary ages inclusive", Preferences{MinAge: 25, MaxAge: 25}, true},
		{"only min age set", Preferences{MinAge: 18}, true},
		{"all filters pass", Preferences{Gender: GenderFemale, Country: "DE", MinAge: 18, MaxAge: 30}, true},
		{"one of many fails", Preferences{Gender: GenderFemale, Country: "DE", MaxAge: 24}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.prefs.Accepts(candidate); got != tt.want {
				t.Errorf("Accepts(%+v) = %v, want %v", tt.prefs, got, tt.want)
			}
		})
	}
}
