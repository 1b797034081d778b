package wikipedia

// SearchResponse ist die Antwort der MediaWiki-Such-API.
type SearchResponse struct {
	Query struct {
		Search []SearchHit `json:"search"`
	} `json:"query"`
}

// SearchHit ist ein einzelner Suchtreffer.
type SearchHit struct {
	Title     string `json:"title"`
	PageID    int    `json:"pageid"`
	Snippet   string `json:"snippet"`
	WordCount int    `json:"wordcount"`
	Timestamp string `json:"timestamp"`
}

// DetailsResponse ist die Antwort der Seitenabfrage mit Extract.
type DetailsResponse struct {
	Query struct {
		Pages map[string]Page `json:"pages"`
	} `json:"query"`
}

// Page ist eine einzelne Wikipedia-Seite.
type Page struct {
	PageID  int    `json:"pageid"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
	FullURL string `json:"fullurl"`
}
