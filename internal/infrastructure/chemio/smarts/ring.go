package smarts

import (
	"strconv"

	"github.com/turtacn/molsmarts/internal/domain/molecule"
	"github.com/turtacn/molsmarts/pkg/errors"
)

// MaxRingClosure is the largest closure number of standard SMARTS.
const MaxRingClosure = 99

// RingClosureRegistry numbers ring-closure edges in the order they are first
// met.  Numbers start at 1 and are never reused.
type RingClosureRegistry struct {
	strict  bool
	numbers map[int]int
}

// NewRingClosureRegistry returns an empty registry.  A strict registry
// refuses to hand out numbers above MaxRingClosure.
func NewRingClosureRegistry(strict bool) *RingClosureRegistry {
	return &RingClosureRegistry{strict: strict, numbers: make(map[int]int)}
}

// GetOrCreate returns the closure number of e, assigning the next one on
// first use.
func (r *RingClosureRegistry) GetOrCreate(e *molecule.Edge) (int, error) {
	if n, ok := r.numbers[e.ID]; ok {
		return n, nil
	}
	n := len(r.numbers) + 1
	if r.strict && n > MaxRingClosure {
		return 0, errors.Newf(errors.ErrCodeRingClosureOverflow,
			"ring closure %d exceeds the limit of %d", n, MaxRingClosure)
	}
	r.numbers[e.ID] = n
	return n, nil
}

// Len returns the number of registered closures.
func (r *RingClosureRegistry) Len() int {
	return len(r.numbers)
}

// FormatRingClosure renders a closure number: a bare digit below 10, a
// percent sign followed by the number otherwise.
func FormatRingClosure(n int) string {
	if n < 10 {
		return strconv.Itoa(n)
	}
	return "%" + strconv.Itoa(n)
}

//Personal.AI order the ending
