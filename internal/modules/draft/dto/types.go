package dto

// Reflection mirrors the cached reflection fields. Mood is kept as entered.
type Reflection struct {
	Mood         string
	Achievements string
	Challenges   string
	Notes        string
}
