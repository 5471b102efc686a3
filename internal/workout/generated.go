package workout

import (
	"context"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// DefaultPrompt is sent to the generator when the caller gives none.
const DefaultPrompt = "30 minute beginner full-body strength workout with 3-5 exercises."

// Plan is what a generator proposes.
type Plan struct {
	Name        string
	Description string
	Exercises   []models.ExerciseInput
}

// Generator produces an exercise plan from a free-text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Plan, error)
}

// FallbackExercises is used whenever the generator fails or returns nothing.
func FallbackExercises() []models.ExerciseInput {
	return []models.ExerciseInput{
		{Name: "Push-ups", Sets: models.NumberOf(3), Reps: models.NumberOf(12), Rest: models.NumberOf(60)},
		{Name: "Squats", Sets: models.NumberOf(4), Reps: models.NumberOf(10), Rest: models.NumberOf(75)},
		{Name: "Plank", Sets: models.NumberOf(3), Reps: models.NumberOf(45), Rest: models.NumberOf(60)},
	}
}

// planInput turns a generator plan, or the fallback when plan is empty, into a
// creation template.
func planInput(prompt string, plan *Plan) models.WorkoutInput {
	prompt = strings.TrimSpace(prompt)
	if plan != nil && len(plan.Exercises) > 0 {
		in := models.WorkoutInput{Name: plan.Name, Exercises: plan.Exercises}
		if in.Name == "" {
			in.Name = GeneratedName(prompt)
		}
		if plan.Description != "" {
			d := plan.Description
			in.Description = &d
		}
		return in
	}
	in := models.WorkoutInput{Name: GeneratedName(prompt), Exercises: FallbackExercises()}
	if prompt != "" {
		in.Description = &prompt
	}
	return in
}

// GeneratedName is "AI: <prompt>" cut to MaxNameLength, or "AI Workout".
func GeneratedName(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "AI Workout"
	}
	return truncate("AI: "+prompt, MaxNameLength)
}
