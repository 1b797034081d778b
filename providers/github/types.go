package github

// SearchResponse ist die Antwort von /search/repositories.
type SearchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []Repository `json:"items"`
}

// Repository ist ein einzelnes Repository.
type Repository struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	HTMLURL     string   `json:"html_url"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"created_at"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	OpenIssues  int      `json:"open_issues_count"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	Fork        bool     `json:"fork"`
	Archived    bool     `json:"archived"`
	Owner       Owner    `json:"owner"`
	License     *License `json:"license"`
}

// Owner ist der Besitzer eines Repositories.
type Owner struct {
	Login string `json:"login"`
}

// License beschreibt die Repository-Lizenz.
type License struct {
	Name   string `json:"name"`
	SpdxID string `json:"spdx_id"`
	URL    string `json:"url"`
}
