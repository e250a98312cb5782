package app

import (
	"strconv"

	"github.com/charmbracelet/huh"

	sessiondto "tally/internal/modules/session/dto"
)

// Field names understood by the session draft store.
const (
	fieldMood         = "mood"
	fieldNotes        = "notes"
	fieldAchievements = "achievements"
	fieldChallenges   = "challenges"
)

type reflectionValues struct {
	Mood         string
	Notes        string
	Achievements string
	Challenges   string
}

type draftChange struct {
	field string
	value string
}

// reflectionForm wraps the huh form shown before a save. values is bound to
// the form fields; saved is what the draft store last received.
type reflectionForm struct {
	form   *huh.Form
	values *reflectionValues
	saved  reflectionValues
}

func newReflectionForm(draft sessiondto.ReflectionDraftOutput, width int) *reflectionForm {
	v := &reflectionValues{
		Mood:         draft.Mood,
		Notes:        draft.Notes,
		Achievements: draft.Achievements,
		Challenges:   draft.Challenges,
	}
	if _, err := strconv.Atoi(v.Mood); err != nil {
		v.Mood = ""
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Mood").
				Options(
					huh.NewOption("skip", ""),
					huh.NewOption("1 · rough", "1"),
					huh.NewOption("2 · meh", "2"),
					huh.NewOption("3 · okay", "3"),
					huh.NewOption("4 · good", "4"),
					huh.NewOption("5 · great", "5"),
				).
				Value(&v.Mood),
			huh.NewText().
				Title("Notes").
				Value(&v.Notes),
			huh.NewText().
				Title("Achievements").
				Value(&v.Achievements),
			huh.NewText().
				Title("Challenges").
				Value(&v.Challenges),
		),
	).WithShowHelp(true)
	if width > 0 {
		form = form.WithWidth(width)
	}

	return &reflectionForm{form: form, values: v, saved: *v}
}

// pendingChanges returns the fields edited since the last call and records
// them as saved.
func (r *reflectionForm) pendingChanges() []draftChange {
	var out []draftChange
	cur := *r.values
	if cur.Mood != r.saved.Mood {
		out = append(out, draftChange{fieldMood, cur.Mood})
	}
	if cur.Notes != r.saved.Notes {
		out = append(out, draftChange{fieldNotes, cur.Notes})
	}
	if cur.Achievements != r.saved.Achievements {
		out = append(out, draftChange{fieldAchievements, cur.Achievements})
	}
	if cur.Challenges != r.saved.Challenges {
		out = append(out, draftChange{fieldChallenges, cur.Challenges})
	}
	r.saved = cur
	return out
}

// input converts the form values into a save request. An unset mood stays nil.
func (r *reflectionForm) input() (mood *int, notes, achievements, challenges string) {
	if n, err := strconv.Atoi(r.values.Mood); err == nil {
		mood = &n
	}
	return mood, r.values.Notes, r.values.Achievements, r.values.Challenges
}
