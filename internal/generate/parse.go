package generate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
)

// arrayPattern spans from the first '[' to the last ']'.
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// rawExercise accepts the field spellings models tend to produce.
type rawExercise struct {
	Name        any           `json:"name"`
	Exercise    any           `json:"exercise"`
	Sets        models.Number `json:"sets"`
	SetCount    models.Number `json:"set_count"`
	Reps        models.Number `json:"reps"`
	Repetitions models.Number `json:"repetitions"`
	RepsPerSet  models.Number `json:"reps_per_set"`
	Rest        models.Number `json:"rest"`
	RestSeconds models.Number `json:"rest_seconds"`
	RestSecs    models.Number `json:"rest_secs"`
	WeightKg    models.Number `json:"weight_kg"`
}

// ParseExercises extracts the first JSON array from generated text. Missing
// counts default to 3 sets of 10 with 60s rest. Unparseable text yields nil.
func ParseExercises(text string) []models.ExerciseInput {
	match := arrayPattern.FindString(text)
	if match == "" {
		return nil
	}
	var raw []rawExercise
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return nil
	}

	out := make([]models.ExerciseInput, 0, len(raw))
	for i, r := range raw {
		ex := models.ExerciseInput{
			Name:   exerciseName(r, i),
			Sets:   positiveOr(3, r.Sets, r.SetCount),
			Reps:   positiveOr(10, r.Reps, r.Repetitions, r.RepsPerSet),
			Rest:   positiveOr(60, r.Rest, r.RestSeconds, r.RestSecs),
			Weight: r.WeightKg,
		}
		sets, _ := ex.Sets.Int()
		reps, _ := ex.Reps.Int()
		if ex.Name == "" || sets <= 0 || reps <= 0 {
			continue
		}
		out = append(out, ex)
	}
	return out
}

func exerciseName(r rawExercise, idx int) string {
	for _, v := range []any{r.Name, r.Exercise} {
		if v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s != "" {
			return truncate(s, workout.MaxNameLength)
		}
	}
	return fmt.Sprintf("Exercise %d", idx+1)
}

// positiveOr picks the first present candidate, mirroring a ?? chain, and
// falls back when it is not a positive integer.
func positiveOr(fallback int, candidates ...models.Number) models.Number {
	for _, c := range candidates {
		if !c.Present() {
			continue
		}
		if n, ok := c.Int(); ok && n > 0 {
			return models.NumberOf(float64(n))
		}
		break
	}
	return models.NumberOf(float64(fallback))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
