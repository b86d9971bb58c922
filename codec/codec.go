// Package codec provides string conversions for object property types.
//
// A TextCodec gives an object type the "construct from string" capability used
// when materializing untyped input, and the inverse used when encoding JSON.
package codec

// TextCodec converts between the wire string and the domain value of one
// object type.
type TextCodec interface {
	// Decode converts a wire string into the domain value.
	Decode(s string) (any, error)
	// Encode converts the domain value back into its canonical wire string.
	Encode(v any) (string, error)
	// Format is the JSON Schema "format" keyword describing the wire string.
	Format() string
}
