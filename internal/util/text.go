package util

// TruncateText shortens s to max runes, appending an ellipsis when cut.
// Used for message previews in notifications.
func TruncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
