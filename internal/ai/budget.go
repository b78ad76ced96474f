package ai

// Truncation markers. The tail reservation in Budget assumes the long marker
// costs about 20 characters; keep them in sync.
const (
	truncationMarker      = "\n... [truncated] ...\n"
	truncationMarkerShort = "\n... [truncated]"
)

// Budget fits text under a character ceiling while preserving the earliest
// and latest content, which is where plan headers and summaries live.
//
// Short input is returned unchanged, so the function is idempotent. Otherwise
// the result is the first 70% of the budget, the truncation marker, and
// whatever tail still fits after reserving 20 characters for the marker. When
// the budget is too small to fit any tail, the result is a plain head cut
// with the short marker.
func Budget(text string, maxChars int) string {
	if text == "" || len(text) <= maxChars {
		return text
	}

	head := maxChars * 7 / 10
	tail := maxChars - head - 20

	if tail > 0 {
		return text[:head] + truncationMarker + text[len(text)-tail:]
	}
	return text[:maxChars] + truncationMarkerShort
}

// orNone substitutes a placeholder for absent optional inputs so prompts show
// "<none>" instead of an empty section.
func orNone(text string) string {
	if text == "" {
		return "<none>"
	}
	return text
}
