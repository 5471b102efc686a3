package models

import "time"

// ImportedWorkout is a session that was performed and logged in another app.
type ImportedWorkout struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Exercises []ImportedExercise
}

// ImportedExercise lists the working sets of one exercise in order.
type ImportedExercise struct {
	Name       string
	TargetReps int
	Sets       []ImportedSet
}

// ImportedSet is one logged working set.
type ImportedSet struct {
	WeightKg float64
	Reps     int
}
