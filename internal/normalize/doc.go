// Package normalize converts loosely-typed inbound payloads into canonical
// model values.
//
// Normalization is total: it never fails, never returns an error, and never
// produces a missing declared field. Each target field resolves from an
// ordered list of candidate source keys (canonical camelCase name first,
// then documented snake_case and legacy aliases), takes the first usable
// value, and coerces it to the target type with an explicit default.
package normalize
