package identity

import (
	"math/rand"

	"github.com/lucenz/chartgen/internal/core/model"
)

// CharacterUniverses is the fixed catalog the diversity constraint samples
// from when inventing a new persona.
var CharacterUniverses = []string{
	"Seinfeld", "The Office", "Parks and Rec", "Star Wars", "Marvel",
	"Harry Potter", "Friends", "Lord of the Rings", "Breaking Bad",
	"Game of Thrones", "Succession", "The Sopranos", "Grey's Anatomy",
	"House MD", "Scrubs", "2 Broke Girls", "The Big Bang Theory",
	"Brooklyn 99", "Superstore",
}

// ExclusionSet tracks display names already in use. It is read from the store
// once per batch and grown in memory as new personas are created, so later
// patients in the same batch never collide without re-reading the store.
type ExclusionSet struct {
	names []string
	seen  map[string]bool
}

func NewExclusionSet(names []string) *ExclusionSet {
	s := &ExclusionSet{seen: map[string]bool{}}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s *ExclusionSet) Add(name string) {
	if name == "" || s.seen[name] {
		return
	}
	s.seen[name] = true
	s.names = append(s.names, name)
}

func (s *ExclusionSet) Contains(name string) bool {
	return s.seen[name]
}

// Names returns at most cap entries, bounding request size. cap <= 0 means no
// bound.
func (s *ExclusionSet) Names(cap int) []string {
	if cap <= 0 || len(s.names) <= cap {
		return s.names
	}
	return s.names[:cap]
}

func (s *ExclusionSet) Len() int {
	return len(s.names)
}

// Constraint is the identity contract handed to the oracle: either a lock on
// an existing persona or diversity rules for inventing a new one.
type Constraint struct {
	// Lock carries the stored persona whose identity fields must be
	// reproduced verbatim. Nil for a new patient.
	Lock *model.PatientPersona

	// Universe and ExcludedNames drive new-persona diversity.
	Universe      string
	ExcludedNames []string
}

func (c Constraint) IsLock() bool {
	return c.Lock != nil
}

// Builder produces constraint descriptors. The random source is injected so
// tests can pin the universe choice.
type Builder struct {
	exclusionCap int
	rand         *rand.Rand
}

func NewBuilder(exclusionCap int, rnd *rand.Rand) *Builder {
	return &Builder{exclusionCap: exclusionCap, rand: rnd}
}

// Build is a pure function of its inputs: existing record present means
// identity lock, absent means diversity. Gender balance across runs is a soft
// statistical goal expressed in the prompt, not enforced here.
func (b *Builder) Build(existing *model.PatientPersona, excluded *ExclusionSet) Constraint {
	if existing != nil {
		return Constraint{Lock: existing}
	}

	c := Constraint{
		Universe: CharacterUniverses[b.rand.Intn(len(CharacterUniverses))],
	}
	if excluded != nil {
		c.ExcludedNames = excluded.Names(b.exclusionCap)
	}
	return c
}
