package domain

import "fmt"

type Field string

const (
	FieldMood         Field = "mood"
	FieldAchievements Field = "achievements"
	FieldChallenges   Field = "challenges"
	FieldNotes        Field = "notes"
)

func (f Field) Validate() error {
	switch f {
	case FieldMood, FieldAchievements, FieldChallenges, FieldNotes:
		return nil
	default:
		return fmt.Errorf("unsupported draft field %q", string(f))
	}
}

// Fields holds the cached reflection values of one session.
type Fields map[Field]string
