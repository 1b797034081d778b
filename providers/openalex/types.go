package openalex

// SearchResponse ist die Antwort von /works.
type SearchResponse struct {
	Results []WorkResult `json:"results"`
}

// WorkResult ist eine einzelne wissenschaftliche Arbeit.
type WorkResult struct {
	ID              string       `json:"id"`
	DisplayName     string       `json:"display_name"`
	Title           string       `json:"title"`
	DOI             string       `json:"doi"`
	PublicationYear int          `json:"publication_year"`
	Type            string       `json:"type"`
	CitedByCount    int          `json:"cited_by_count"`
	Authorships     []Authorship `json:"authorships"`
	OpenAccess      OpenAccess   `json:"open_access"`
}

// Authorship nennt einen beteiligten Autor.
type Authorship struct {
	Author struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

// OpenAccess beschreibt den Open-Access-Status.
type OpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
}
