package logtool

import "github.com/Veraticus/fpm-logcheck/pkg/types"

// ErrorSlot holds the first mismatch seen since it was last cleared.
type ErrorSlot struct {
	err *types.CheckError
}

// Raise records err unless an error is already pending or the offending line
// contains ignoreFor. It always returns false so matchers can return it.
func (s *ErrorSlot) Raise(err *types.CheckError, ignoreFor string) bool {
	return s.Fold(types.Classify(err, ignoreFor))
}

// Fold applies o to the slot and reports whether the line was accepted.
// While an error is pending every line is rejected.
func (s *ErrorSlot) Fold(o types.Outcome) bool {
	if s.err != nil {
		return false
	}
	if o.IsMatched() {
		return true
	}
	if err := o.Err(); err != nil {
		s.err = err
	}
	return false
}

// Pending reports whether an error is recorded.
func (s *ErrorSlot) Pending() bool {
	return s.err != nil
}

// Peek returns the pending error without clearing it.
func (s *ErrorSlot) Peek() *types.CheckError {
	return s.err
}

// Pop returns the pending error and clears the slot.
func (s *ErrorSlot) Pop() *types.CheckError {
	err := s.err
	s.err = nil
	return err
}
