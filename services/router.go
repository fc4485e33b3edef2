package services

import (
	"context"
	"log"
	"math"

	"ragstack/encoders"
	"ragstack/models"
)

// RouteLayer classifies a query into an intent by similarity against each
// route's example utterances. With no encoder configured it degrades to the
// default intent for every query rather than failing.
type RouteLayer struct {
	routes  []models.Route
	encoder encoders.Encoder
}

// DefaultRoutes is the static intent set: a single "summarize" route.
func DefaultRoutes() []models.Route {
	return []models.Route{
		{
			Name: "summarize",
			Utterances: []string{
				"Summmarize the following",
				"Could you summarize the",
				"Summarize",
				"Provide a summary of",
			},
			ScoreThreshold: 0.5,
		},
	}
}

// NewRouteLayer builds the router. encoder may be nil, in which case every
// query classifies to the default intent.
func NewRouteLayer(routes []models.Route, encoder encoders.Encoder) *RouteLayer {
	return &RouteLayer{routes: routes, encoder: encoder}
}

// Classify returns the name of the best route whose threshold is met, or the
// empty string for the default intent. Ties go to the first-registered route.
func (l *RouteLayer) Classify(ctx context.Context, query string) string {
	if l.encoder == nil || len(l.routes) == 0 {
		return ""
	}

	texts := []string{query}
	for _, route := range l.routes {
		texts = append(texts, route.Utterances...)
	}
	vectors, err := l.encoder.Embed(ctx, texts)
	if err != nil {
		log.Printf("ROUTER: failed to embed query for routing, using default intent: %v", err)
		return ""
	}
	queryVector := vectors[0]

	best := ""
	bestScore := float32(-1)
	offset := 1
	for _, route := range l.routes {
		score := float32(0)
		for range route.Utterances {
			s := float32(routeSimilarity(queryVector, vectors[offset]))
			offset++
			if s > score {
				score = s
			}
		}
		if score >= route.ScoreThreshold && score > bestScore {
			best = route.Name
			bestScore = score
		}
	}
	return best
}

func routeSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
