package schoolwork

// Lesson is one timetable slot for a student. StartDate and EndDate keep
// the provider's "YYYY-MM-DD HH:MM" text form untouched.
type Lesson struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Matiere     string `json:"matiere"`
	CodeMatiere string `json:"codeMatiere"`
	TypeCours   string `json:"typeCours"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	Color    string `json:"color"`
	Dispense string `json:"dispense"`
	Prof     string `json:"prof"`
	Salle    string `json:"salle"`

	// Class and group the slot belongs to.
	Classe     string `json:"classe"`
	ClasseID   string `json:"classeId"`
	ClasseCode string `json:"classeCode"`
	Groupe     string `json:"groupe"`
	GroupeCode string `json:"groupeCode"`
	GroupeID   string `json:"groupeId"`

	Icone string `json:"icone"`

	// Flags, absent on the wire means false.
	Dispensable     bool `json:"dispensable"`
	IsFlexible      bool `json:"isFlexible"`
	IsModifie       bool `json:"isModifie"`
	ContenuDeSeance bool `json:"contenuDeSeance"`
	DevoirAFaire    bool `json:"devoirAFaire"`
	IsAnnule        bool `json:"isAnnule"`
}

// IsCancelled checks if the slot was cancelled.
func (l Lesson) IsCancelled() bool {
	return l.IsAnnule
}
