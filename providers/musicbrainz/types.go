package musicbrainz

// SearchResponse ist die Antwort von /recording.
type SearchResponse struct {
	Recordings []Recording `json:"recordings"`
}

// Recording ist eine einzelne Aufnahme.
type Recording struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	LengthMs       int            `json:"length"`
	Disambiguation string         `json:"disambiguation"`
	ArtistCredit   []ArtistCredit `json:"artist-credit"`
	Releases       []Release      `json:"releases"`
}

// ArtistCredit nennt einen beteiligten Künstler.
type ArtistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID string `json:"id"`
	} `json:"artist"`
}

// Release ist eine Veröffentlichung der Aufnahme.
type Release struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Artist ist die Antwort von /artist/<id>.
type Artist struct {
	Name     string `json:"name"`
	LifeSpan struct {
		End string `json:"end"`
	} `json:"life-span"`
}
