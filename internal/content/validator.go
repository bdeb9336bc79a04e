package content

import "fmt"

// Validate checks a bundle against structural limits. Pure and
// deterministic; the first failing check wins. A nil result means the
// bundle is safe to store.
func Validate(b *Bundle, lim Limits) error {
	if b == nil {
		return fmt.Errorf("%w: bundle is nil", ErrGenerationFailed)
	}

	wc := WordCount(b.Passage)
	if wc < lim.MinWords || wc > lim.MaxWords {
		return fmt.Errorf("%w: %d words, want [%d,%d]", ErrWordCountOutOfRange, wc, lim.MinWords, lim.MaxWords)
	}

	if len(b.Questions) != lim.Questions {
		return fmt.Errorf("%w: got %d, want %d", ErrQuestionCountMismatch, len(b.Questions), lim.Questions)
	}

	for i, q := range b.Questions {
		if q.Number != i+1 {
			return fmt.Errorf("%w: question at position %d numbered %d", ErrQuestionCountMismatch, i+1, q.Number)
		}
		if err := validateQuestion(q); err != nil {
			return fmt.Errorf("question %d: %w", q.Number, err)
		}
	}
	return nil
}

func validateQuestion(q Question) error {
	if len(q.Options) != OptionCount {
		return fmt.Errorf("%w: got %d, want %d", ErrOptionCountMismatch, len(q.Options), OptionCount)
	}

	// Label set must match {A,B,C,D} exactly, in order, no duplicates.
	for i, opt := range q.Options {
		if opt.Label != Labels[i] {
			return fmt.Errorf("%w: position %d has label %q", ErrBadLabelSet, i+1, opt.Label)
		}
	}

	found := false
	for _, opt := range q.Options {
		if opt.Label == q.Correct {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrBadCorrectLabel, q.Correct)
	}

	if _, ok := q.Rationale[CorrectRationaleKey]; !ok {
		return fmt.Errorf("%w: key %q", ErrMissingRationale, CorrectRationaleKey)
	}
	for _, opt := range q.Options {
		if _, ok := q.Rationale[opt.Label]; !ok {
			return fmt.Errorf("%w: label %q", ErrMissingRationale, opt.Label)
		}
	}
	return nil
}
