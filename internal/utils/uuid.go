package utils

import "github.com/google/uuid"

// UUIDGenerator issues client identifiers. Version 7 identifiers are
// time-ordered, so rows keyed by them stay roughly append-only.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a v7 UUID, falling back to a random v4 when the clock
// source refuses.
func (g *UUIDGenerator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
