package recommendations

const (
	// FallbackScore marks a document produced without a provider response.
	FallbackScore   = "N/A"
	fallbackSummary = "We're sorry, there was an issue generating recommendations. Please try again later."
)

// Fallback returns the fixed document used when the provider call fails.
func Fallback() Document {
	doc := NewDocument()
	score := FallbackScore
	summary := fallbackSummary
	doc.OverallScore = &score
	doc.Summary = &summary
	return doc
}

// IsFallback reports whether doc carries the fallback score.
func IsFallback(doc Document) bool {
	return doc.OverallScore != nil && *doc.OverallScore == FallbackScore && doc.ItemCount() == 0
}
