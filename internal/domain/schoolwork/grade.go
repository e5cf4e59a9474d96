package schoolwork

// Grade is one graded assignment for a student. Numeric-looking fields
// (Coef, NoteSur, Valeur, class statistics) stay strings: the provider
// sends locale-formatted values like "15,5" and empty strings for absent
// marks, and the consumer decides how to render them.
type Grade struct {
	ID          string `json:"id"`
	Devoir      string `json:"devoir"`
	CodePeriode string `json:"codePeriode"`

	// Subject identification.
	CodeMatiere     string `json:"codeMatiere"`
	LibelleMatiere  string `json:"libelleMatiere"`
	CodeSousMatiere string `json:"codeSousMatiere"`

	TypeDevoir  string `json:"typeDevoir"`
	EnLettre    string `json:"enLettre"`
	Commentaire string `json:"commentaire"`

	// Attached documents, subject sheet and correction.
	UncSujet   string `json:"uncSujet"`
	UncCorrige string `json:"uncCorrige"`

	// Mark and scale.
	Coef            string `json:"coef"`
	NoteSur         string `json:"noteSur"`
	Valeur          string `json:"valeur"`
	NonSignificatif string `json:"nonSignificatif"`
	Valeurisee      string `json:"valeurisee"`

	Date       string `json:"date"`
	DateSaisie string `json:"dateSaisie"`

	// Class statistics for the same assignment.
	MoyenneClasse string `json:"moyenneClasse"`
	MinClasse     string `json:"minClasse"`
	MaxClasse     string `json:"maxClasse"`

	ElementsProgramme string `json:"elementsProgramme"`
}

// IsSignificant checks if the mark counts towards averages.
func (g Grade) IsSignificant() bool {
	return g.NonSignificatif != "true"
}
