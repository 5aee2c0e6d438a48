package models

// Participant is a settlement-eligible institution identified by its BIC.
// Participants are provisioned at system initialization and never change.
type Participant struct {
	BIC           string // unique institution code
	Name          string
	AccountNumber string // the single account owned by this participant
}
