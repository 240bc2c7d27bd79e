// Package uid provides unique identifier generators.
package uid

// StringID generates string identifiers such as UUIDs.
type StringID interface {
	Generate() string
}

// NumberID generates int64 identifiers such as snowflakes.
type NumberID interface {
	Generate() int64
}
