package openlibrary

import "encoding/json"

// SearchResponse ist die Antwort von /search.json.
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// Doc ist ein einzelner Treffer der Open-Library-Suche.
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Publisher        []string `json:"publisher"`
	Subject          []string `json:"subject"`
	Language         []string `json:"language"`
	EditionCount     int      `json:"edition_count"`
}

// Work ist die Antwort von /works/<key>.json.
type Work struct {
	Title            string          `json:"title"`
	ByStatement      string          `json:"by_statement"`
	FirstPublishDate string          `json:"first_publish_date"`
	Description      json.RawMessage `json:"description"`
	Authors          []AuthorRef     `json:"authors"`
}

// AuthorRef verweist auf einen Autorendatensatz.
type AuthorRef struct {
	Author struct {
		Key string `json:"key"`
	} `json:"author"`
}

// Author ist die Antwort von /authors/<key>.json.
type Author struct {
	Name      string `json:"name"`
	DeathDate string `json:"death_date"`
}
