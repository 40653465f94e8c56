// Package format converts raw values into display strings.
//
// The functions here are pure: they never perform I/O, never panic on
// well-typed input, and degrade to a safe sentinel on input outside their
// domain instead of returning errors. They are safe for concurrent use.
//
// # Numbers
//
// Number rendering follows the conventions of the web client that consumes
// these strings, so values printed by the Go side and the browser side line
// up character for character:
//
//   - [Amount] abbreviates large numbers with a caller-supplied unit table
//     (for example "", "万", "亿", "万亿"), rounding to two decimals with
//     thousands separators.
//   - [Score] prints exactly five fractional digits.
//   - [FileSize] scales a byte count into Bytes, KB, MB and so on.
//
// Rounding is half away from zero on the exact binary value of the float,
// the same rule the browser applies for fixed-point output.
//
// # Time
//
// [Timestamp] substitutes the tokens YYYY, MM, DD, HH, mm and ss in a layout
// string. Unknown text passes through untouched.
//
// # Merging
//
// [DeepMerge] recursively merges JSON-shaped values (map[string]any and
// []any). Slices are merged index by index rather than concatenated.
package format
