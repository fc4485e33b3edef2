package models

// Route describes one query intent: the example phrases that recognize it and
// the minimum similarity an utterance match must reach for the route to fire.
// Routes are static configuration, built once at router startup.
type Route struct {
	Name           string
	Utterances     []string
	ScoreThreshold float32
}
