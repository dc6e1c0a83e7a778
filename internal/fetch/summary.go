package fetch

import "fmt"

// Summary aggregates page outcomes for one fetch run.
type Summary struct {
	Results []Result
	Fetched int
	Cached  int
	Skipped int
	Failed  int
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeFetched:
		s.Fetched++
	case OutcomeCached:
		s.Cached++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Total is the number of pages processed.
func (s *Summary) Total() int {
	return len(s.Results)
}

// Partial reports failures that still leave usable content.
func (s *Summary) Partial() bool {
	return s.Failed > 0 && s.Err() == nil
}

// Err returns an error when every failing page left nothing usable:
// at least one failure and no page fetched or cached.
func (s *Summary) Err() error {
	if s.Failed > 0 && s.Fetched == 0 && s.Cached == 0 {
		return &AllFailedError{Failed: s.Failed, Total: s.Total(), Results: s.Results}
	}
	return nil
}

// AllFailedError is returned when no page could be fetched or read from cache.
type AllFailedError struct {
	Failed  int
	Total   int
	Results []Result
}

func (e *AllFailedError) Error() string {
	msg := fmt.Sprintf("all fetches failed (%d of %d pages)", e.Failed, e.Total)
	for _, r := range e.Results {
		if r.Outcome == OutcomeFailed && r.Err != nil {
			msg += fmt.Sprintf("\n  - %s: %v", r.Slug, r.Err)
		}
	}
	return msg
}
