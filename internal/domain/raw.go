package domain

// RawGame is one entry of a monthly archive as delivered by the archive service.
// Only the fields the extractor reads are kept.
type RawGame struct {
	URL       string `json:"url"`
	TimeClass string `json:"time_class"`
	PGN       string `json:"pgn"`
}
