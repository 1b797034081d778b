package imdb

// SuggestResponse ist die Antwort der IMDb-Suggestion-API.
type SuggestResponse struct {
	Entries []SuggestEntry `json:"d"`
}

// SuggestEntry ist ein einzelner Vorschlag. Die Feldnamen der API sind
// einbuchstabig.
type SuggestEntry struct {
	ID       string `json:"id"`
	Title    string `json:"l"`
	Starring string `json:"s"`
	Year     int    `json:"y"`
	Kind     string `json:"qid"`
	Rank     int    `json:"rank"`
}
