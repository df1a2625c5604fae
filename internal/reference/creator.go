package reference

// Creator types used in destination records.
const (
	CreatorAuthor = "author"
	CreatorEditor = "editor"
)

// Creator is a person or an institution credited on a record.
// Personal names use FirstName/LastName; corporate names use Name.
type Creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Name        string `json:"name,omitempty"`
}

// IsLiteral reports whether the creator is a single-field (corporate) name.
func (c Creator) IsLiteral() bool {
	return c.Name != "" && c.LastName == ""
}

// Display returns "First Last" or the literal name.
func (c Creator) Display() string {
	if c.IsLiteral() {
		return c.Name
	}
	if c.FirstName != "" {
		return c.FirstName + " " + c.LastName
	}
	return c.LastName
}

// Tag is a destination keyword.
type Tag struct {
	Tag string `json:"tag"`
}

// ResolvedParty is the party primarily responsible for a record, used for
// filenames and citekeys.
type ResolvedParty struct {
	Raw           string   `json:"raw"`
	PartyList     []string `json:"party_list"`
	FirstLastname string   `json:"first_lastname"`
	Multiple      bool     `json:"multiple"`
}
