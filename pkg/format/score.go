package format

// ScoreSentinel is returned by [Score] for non-numeric input.
const ScoreSentinel = "0.00000"

// Score formats a relevance score with exactly five fractional digits.
// Any v that is not a Go numeric type yields [ScoreSentinel]; numeric
// strings are not parsed.
func Score(v any) string {
	f, ok := asFloat(v)
	if !ok {
		return ScoreSentinel
	}
	return toFixed(f, 5)
}
