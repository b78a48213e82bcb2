package content

import (
	"fmt"
	"strings"
)

// Validate checks the structural invariants scoring relies on: unique
// question ids, an answer scale of consecutive values starting at 0, and
// bands that partition [0, MaxScore] without gaps or overlaps.
func Validate(q *Questionnaire) error {
	var errs []string

	if len(q.Questions) == 0 {
		errs = append(errs, "no questions defined")
	}

	ids := make(map[int]bool, len(q.Questions))
	for _, qu := range q.Questions {
		if ids[qu.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %d", qu.ID))
		}
		ids[qu.ID] = true
		if strings.TrimSpace(qu.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %d has no text", qu.ID))
		}
	}

	// Option values must be exactly 0..n-1.
	seen := make(map[int]bool, len(q.Options))
	for _, o := range q.Options {
		if seen[o.Value] {
			errs = append(errs, fmt.Sprintf("duplicate option value: %d", o.Value))
		}
		seen[o.Value] = true
	}
	for v := 0; v < len(q.Options); v++ {
		if !seen[v] {
			errs = append(errs, fmt.Sprintf("option value %d missing from scale", v))
		}
	}

	errs = append(errs, validateBands(q.Bands, q.MaxScore())...)

	if len(errs) > 0 {
		return fmt.Errorf("questionnaire validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func validateBands(bands []Band, maxScore int) []string {
	if len(bands) == 0 {
		return []string{"no evaluation bands defined"}
	}

	var errs []string
	for i, b := range bands {
		if b.Min > b.Max {
			errs = append(errs, fmt.Sprintf("band %q: min %d > max %d", b.Title, b.Min, b.Max))
		}
		if i > 0 && b.Min != bands[i-1].Max+1 {
			errs = append(errs, fmt.Sprintf("band %q starts at %d, expected %d (gap or overlap)", b.Title, b.Min, bands[i-1].Max+1))
		}
	}

	if bands[0].Min != 0 {
		errs = append(errs, fmt.Sprintf("first band starts at %d, expected 0", bands[0].Min))
	}
	if last := bands[len(bands)-1]; last.Max != maxScore {
		errs = append(errs, fmt.Sprintf("last band ends at %d, expected max score %d", last.Max, maxScore))
	}
	return errs
}
