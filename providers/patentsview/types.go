package patentsview

// searchQuery ist der POST-Body der PatentsView-API.
type searchQuery struct {
	Query   map[string]any `json:"q"`
	Fields  []string       `json:"f"`
	Options map[string]any `json:"o"`
}

// SearchResponse ist die Antwort von /patents/query.
type SearchResponse struct {
	Patents []Patent `json:"patents"`
}

// Patent ist ein einzelnes Patent.
type Patent struct {
	PatentNumber   string     `json:"patent_number"`
	PatentTitle    string     `json:"patent_title"`
	PatentDate     string     `json:"patent_date"`
	PatentAbstract string     `json:"patent_abstract"`
	PatentType     string     `json:"patent_type"`
	Inventors      []Inventor `json:"inventors"`
	Assignees      []Assignee `json:"assignees"`
}

// Inventor nennt einen Erfinder.
type Inventor struct {
	FirstName string `json:"inventor_first_name"`
	LastName  string `json:"inventor_last_name"`
}

// Assignee nennt den Rechteinhaber.
type Assignee struct {
	Organization string `json:"assignee_organization"`
}
