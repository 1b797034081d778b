package models

// ContentType klassifiziert ein Werk. Geschlossene Wertemenge statt freier
// Strings, damit Routing und Typfilter nicht an Schreibvarianten scheitern.
type ContentType string

const (
	TypeUnknown   ContentType = "unknown"
	TypeBook      ContentType = "book"
	TypeMusic     ContentType = "music"
	TypeFilm      ContentType = "film"
	TypeMovie     ContentType = "movie"
	TypeSoftware  ContentType = "software"
	TypeCode      ContentType = "code"
	TypeLibrary   ContentType = "library"
	TypePatent    ContentType = "patent"
	TypeTrademark ContentType = "trademark"
	TypeAcademic  ContentType = "academic_paper"
	TypeArticle   ContentType = "article"
	TypeArtwork   ContentType = "artwork"
	TypeImage     ContentType = "image"
	TypeProject   ContentType = "project"
	TypeCompany   ContentType = "company"
)

// typeGroups bildet jeden Typ auf seine Äquivalenzgruppe ab. Typen derselben
// Gruppe gelten beim Filtern und beim Dedup-Schlüsselvergleich als gleich.
var typeGroups = map[ContentType][]ContentType{
	TypeSoftware:  {TypeSoftware, TypeCode, TypeLibrary, TypeProject},
	TypeCode:      {TypeSoftware, TypeCode, TypeLibrary, TypeProject},
	TypeLibrary:   {TypeSoftware, TypeCode, TypeLibrary, TypeProject},
	TypeProject:   {TypeSoftware, TypeCode, TypeLibrary, TypeProject},
	TypeFilm:      {TypeFilm, TypeMovie},
	TypeMovie:     {TypeFilm, TypeMovie},
	TypeAcademic:  {TypeAcademic, TypeArticle},
	TypeArticle:   {TypeAcademic, TypeArticle},
	TypeArtwork:   {TypeArtwork, TypeImage},
	TypeImage:     {TypeArtwork, TypeImage},
	TypeTrademark: {TypeTrademark, TypeCompany},
	TypeCompany:   {TypeTrademark, TypeCompany},
}

// knownTypes listet alle gültigen Werte für ParseContentType.
var knownTypes = map[ContentType]bool{
	TypeUnknown: true, TypeBook: true, TypeMusic: true, TypeFilm: true,
	TypeMovie: true, TypeSoftware: true, TypeCode: true, TypeLibrary: true,
	TypePatent: true, TypeTrademark: true, TypeAcademic: true,
	TypeArticle: true, TypeArtwork: true, TypeImage: true,
	TypeProject: true, TypeCompany: true,
}

// ParseContentType wandelt einen String in einen ContentType um. Unbekannte
// Werte werden auf TypeUnknown abgebildet.
func ParseContentType(s string) ContentType {
	ct := ContentType(s)
	if knownTypes[ct] {
		return ct
	}
	return TypeUnknown
}

// IsUnknown meldet, ob der Typ fehlt oder nicht klassifiziert werden konnte.
func (t ContentType) IsUnknown() bool {
	return t == "" || t == TypeUnknown
}

// Group liefert die Äquivalenzgruppe von t einschließlich t selbst.
// Für unbekannte Typen wird nil geliefert (kein Filter).
func (t ContentType) Group() []ContentType {
	if t.IsUnknown() {
		return nil
	}
	if g, ok := typeGroups[t]; ok {
		return g
	}
	return []ContentType{t}
}

// Matches meldet, ob other zur Äquivalenzgruppe von t gehört. Ein unbekannter
// Typ auf einer der beiden Seiten zählt als Treffer.
func (t ContentType) Matches(other ContentType) bool {
	if t.IsUnknown() || other.IsUnknown() {
		return true
	}
	if t == other {
		return true
	}
	for _, g := range typeGroups[t] {
		if g == other {
			return true
		}
	}
	return false
}
