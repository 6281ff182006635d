// Package activation is the runtime queried by instrumented code to decide
// which mutant, if any, is switched on.
//
// The package depends on the standard library only: its source is copied
// verbatim into the module under test.
package activation

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
)

// EnvVar names the environment variable read at start-up.
// Its value is a comma separated list of ids and inclusive ranges, e.g. "3,7-9".
const EnvVar = "SCHEMATA_ACTIVE_MUTANTS"

// MaxID is the largest mutant id Parse accepts and Set records. It bounds
// the memory a single range such as "0-9999999999" may claim.
const MaxID = 1<<20 - 1

// State holds the set of active mutant ids.
// IsActive is lock-free and safe to call from any goroutine.
type State struct {
	bits atomic.Pointer[[]uint64]
}

// NewState returns a State with the given ids active.
func NewState(ids ...int) *State {
	s := &State{}
	s.Set(ids...)

	return s
}

// IsActive reports whether mutant id is switched on.
func (s *State) IsActive(id int) bool {
	if id < 0 {
		return false
	}

	p := s.bits.Load()
	if p == nil {
		return false
	}

	bits := *p
	word := id / 64

	if word >= len(bits) {
		return false
	}

	return bits[word]&(1<<(uint(id)%64)) != 0
}

// Set replaces the active set.
func (s *State) Set(ids ...int) {
	var bits []uint64

	for _, id := range ids {
		if id < 0 || id > MaxID {
			continue
		}

		word := id / 64
		for len(bits) <= word {
			bits = append(bits, 0)
		}

		bits[word] |= 1 << (uint(id) % 64)
	}

	s.bits.Store(&bits)
}

// Reset switches every mutant off.
func (s *State) Reset() {
	s.bits.Store(nil)
}

// Active returns the active ids in ascending order.
func (s *State) Active() []int {
	p := s.bits.Load()
	if p == nil {
		return nil
	}

	var ids []int

	for word, w := range *p {
		for bit := 0; bit < 64; bit++ {
			if w&(1<<uint(bit)) != 0 {
				ids = append(ids, word*64+bit)
			}
		}
	}

	return ids
}

// Parse decodes a list such as "1,4,6-8" into ids, sorted and deduplicated.
func Parse(list string) ([]int, error) {
	seen := make(map[int]struct{})

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")

		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid mutant id %q: %w", part, err)
		}

		to := from

		if isRange {
			to, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid mutant range %q: %w", part, err)
			}
		}

		if from < 0 || to < from {
			return nil, fmt.Errorf("invalid mutant range %q", part)
		}

		if to > MaxID {
			return nil, fmt.Errorf("mutant id %d in %q exceeds %d", to, part, MaxID)
		}

		for id := from; id <= to; id++ {
			seen[id] = struct{}{}
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids, nil
}

// Default is the process-wide state, seeded from EnvVar.
var Default = &State{}

func init() {
	value, ok := os.LookupEnv(EnvVar)
	if !ok {
		return
	}

	ids, err := Parse(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", EnvVar, err)
		return
	}

	Default.Set(ids...)
}

// IsActive reports whether mutant id is switched on in Default.
func IsActive(id int) bool {
	return Default.IsActive(id)
}

// Activate replaces the active set of Default.
func Activate(ids ...int) {
	Default.Set(ids...)
}
