package mcp

// Ptr returns a pointer to the given value.
// This is useful for constructing optional fields in structs that use pointer types.
//
// Example:
//
//	ann := Annotations{
//		Priority: Ptr(0.8), // optional field
//	}
func Ptr[T any](v T) *T {
	return &v
}
