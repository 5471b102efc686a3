package alpha

import (
	"strings"
	"testing"
	"time"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseCompleteSessions verifies parsing a multi-session export with
// exercises, working sets and warmups.
func TestParseCompleteSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	s1 := sessions[0]
	if s1.Name != "Legs · Day 2 · Week 4 · Push-Pull-Legs" {
		t.Errorf("s1.Name = %q", s1.Name)
	}
	if want := time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC); !s1.StartedAt.Equal(want) {
		t.Errorf("s1.StartedAt = %v, want %v", s1.StartedAt, want)
	}
	if s1.Duration != 62*time.Minute {
		t.Errorf("s1.Duration = %v, want 1h2m", s1.Duration)
	}
	if len(s1.Exercises) != 6 {
		t.Fatalf("s1 exercises = %d, want 6", len(s1.Exercises))
	}

	tests := []struct {
		name, equipment  string
		targetReps       int
		working, warmups int
	}{
		{"Hack Squats", "Machine", 8, 3, 2},
		{"Sumo Squats", "Smith machine", 10, 2, 1},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 3, 1},
		{"Reverse Lunges", "Dumbbells", 10, 3, 0},
		{"Standing Calf Raises", "Machine", 12, 3, 1},
		{"Hanging Leg Raises", "Bodyweight", 12, 3, 0},
	}
	for i, tt := range tests {
		ex := s1.Exercises[i]
		if ex.Number != i+1 {
			t.Errorf("exercise %d Number = %d", i, ex.Number)
		}
		if ex.Name != tt.name || ex.Equipment != tt.equipment {
			t.Errorf("exercise %d = %q/%q, want %q/%q", i, ex.Name, ex.Equipment, tt.name, tt.equipment)
		}
		if ex.TargetReps != tt.targetReps {
			t.Errorf("%s TargetReps = %d, want %d", tt.name, ex.TargetReps, tt.targetReps)
		}
		if len(ex.Sets) != tt.working {
			t.Errorf("%s working sets = %d, want %d", tt.name, len(ex.Sets), tt.working)
		}
		if len(ex.Warmups) != tt.warmups {
			t.Errorf("%s warmups = %d, want %d", tt.name, len(ex.Warmups), tt.warmups)
		}
	}

	calf := s1.Exercises[4].Sets[0]
	if calf.WeightKg != 157.5 || calf.Reps != 11 || calf.RIR != 1 {
		t.Errorf("calf set 1 = %+v, want 157.5kg x 11 @ RIR 1", calf)
	}
	hyper := s1.Exercises[2].Sets[0]
	if !hyper.BodyweightPlus || hyper.WeightKg != 35 {
		t.Errorf("hyperextension set 1 = %+v, want bodyweight +35", hyper)
	}

	s2 := sessions[1]
	if s2.Name != "Push · Day 1 · Week 4 · Push-Pull-Legs" {
		t.Errorf("s2.Name = %q", s2.Name)
	}
	if s2.Duration != 72*time.Minute {
		t.Errorf("s2.Duration = %v, want 1h12m", s2.Duration)
	}
	if got := s2.Exercises[0].Sets[2].WeightKg; got != 100 {
		t.Errorf("bench set 3 weight = %v, want 100", got)
	}
}

// TestParseSessionWithoutTrailingBlankLine verifies the last session is kept
// when the export does not end in a blank line.
func TestParseSessionWithoutTrailingBlankLine(t *testing.T) {
	csv := `"Pull";"2026-03-01 18:05 h";"45 min"
"1. Pull Ups · Bodyweight · 8 reps"
#;KG;REPS;RIR
1;+10;8;2`
	sessions, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 1 || len(sessions[0].Exercises) != 1 {
		t.Fatalf("got %+v, want one session with one exercise", sessions)
	}
	if sessions[0].Duration != 45*time.Minute {
		t.Errorf("Duration = %v, want 45m", sessions[0].Duration)
	}
	if sessions[0].StartedAt.Hour() != 18 {
		t.Errorf("StartedAt = %v, want 18:05", sessions[0].StartedAt)
	}
}

// TestParseRejectsOrphanRows verifies structural errors carry the line number.
func TestParseRejectsOrphanRows(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"exercise without session", `"1. Squat · Barbell · 5 reps"`, "line 1: exercise without session"},
		{"set without exercise", "\"S\";\"2026-03-01 8:00 h\";\"1:00 hr\"\n1;100;5;1", "line 2: set data without exercise"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.csv))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want %q", err, tt.want)
			}
		})
	}
}

// TestParseDuration verifies the duration column formats.
func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1:02 hr", 62 * time.Minute},
		{"0:45 hr", 45 * time.Minute},
		{"2:00", 2 * time.Hour},
		{"50 min", 50 * time.Minute},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestParseWeight verifies decimal commas and the bodyweight-plus notation.
func TestParseWeight(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		bw   bool
	}{
		{"102,5", 102.5, false},
		{"0,5", 0.5, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{"80", 80, false},
	}
	for _, tt := range tests {
		got, bw := parseWeight(tt.in)
		if got != tt.want || bw != tt.bw {
			t.Errorf("parseWeight(%q) = %v, %v; want %v, %v", tt.in, got, bw, tt.want, tt.bw)
		}
	}
}

// TestWarmupParsing verifies warmup extraction from the exercise header's
// second field.
func TestWarmupParsing(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps<br>WU3 · +0 kg · 8 reps")
	if len(sets) != 3 {
		t.Fatalf("warmup sets = %d, want 3", len(sets))
	}
	if sets[0].WeightKg != 37.5 || sets[0].Reps != 9 {
		t.Errorf("wu1 = %+v, want 37.5kg x 9", sets[0])
	}
	if sets[1].WeightKg != 72.5 || sets[1].Number != 2 {
		t.Errorf("wu2 = %+v, want #2 at 72.5kg", sets[1])
	}
	if !sets[2].BodyweightPlus {
		t.Error("wu3 should be bodyweight-plus")
	}
	if parseWarmups("") != nil {
		t.Error("parseWarmups(\"\") should be nil")
	}
}

// TestEmptyInput verifies that empty input returns no sessions without error.
func TestEmptyInput(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}
