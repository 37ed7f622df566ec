package domain

// Preferences are optional match filters. A zero field means "no
// constraint" on that dimension. Compatibility is always evaluated in
// both directions by the matchmaker; Accepts only answers one side.
type Preferences struct {
	Gender  string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Country string `json:"country,omitempty" validate:"omitempty,len=2"`
	MinAge  int    `json:"minAge,omitempty" validate:"omitempty,gte=18,lte=99"`
	MaxAge  int    `json:"maxAge,omitempty" validate:"omitempty,gte=18,lte=99,gtefield=MinAge"`
}

// Accepts reports whether a candidate profile satisfies these filters.
func (pr Preferences) Accepts(p Profile) bool {
	if pr.Gender != "" && pr.Gender != p.Gender {
		return false
	}
	if pr.Country != "" && pr.Country != p.Country {
		return false
	}
	if pr.MinAge > 0 && p.Age < pr.MinAge {
		return false
	}
	if pr.MaxAge > 0 && p.Age > pr.MaxAge {
		return false
	}
	return true
}
