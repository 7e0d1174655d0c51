package model

import "time"

const MaxOrchestraName = 100

// InstrumentType names the kinds of instruments an orchestra can own
type InstrumentType string

const (
	InstrumentViolin    InstrumentType = "violin"
	InstrumentTrombone  InstrumentType = "trombone"
	InstrumentFlute     InstrumentType = "flute"
	InstrumentHarp      InstrumentType = "harp"
	InstrumentTrumpet   InstrumentType = "trumpet"
	InstrumentPiano     InstrumentType = "piano"
	InstrumentGuitar    InstrumentType = "guitar"
	InstrumentPipeOrgan InstrumentType = "pipe organ"
)

// InstrumentTypes lists every valid InstrumentType
var InstrumentTypes = []InstrumentType{
	InstrumentViolin, InstrumentTrombone, InstrumentFlute, InstrumentHarp,
	InstrumentTrumpet, InstrumentPiano, InstrumentGuitar, InstrumentPipeOrgan,
}

// Valid reports whether t is a known instrument type
func (t InstrumentType) Valid() bool {
	for _, known := range InstrumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Orchestra represents a named group of instruments
type Orchestra struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Instruments []Instrument `json:"instruments,omitempty"`
}

// Instrument belongs to an orchestra
type Instrument struct {
	ID           string         `json:"id"`
	OrchestraID  string         `json:"orchestra_id"`
	Type         InstrumentType `json:"type"`
	PurchaseDate time.Time      `json:"purchase_date"`
}

// CreateOrchestraRequest represents a request to create an orchestra
type CreateOrchestraRequest struct {
	Name string `json:"name"`
}

// Validate validates a CreateOrchestraRequest
func (r *CreateOrchestraRequest) Validate() []FieldError {
	var errors []FieldError
	if r.Name == "" {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > MaxOrchestraName {
		errors = append(errors, FieldError{Field: "name", Message: "name must be 100 characters or less"})
	}
	return errors
}

// AddInstrumentRequest represents a request to add an instrument to an orchestra
type AddInstrumentRequest struct {
	Type         InstrumentType `json:"type"`
	PurchaseDate time.Time      `json:"purchase_date"`
}

// Validate validates an AddInstrumentRequest
func (r *AddInstrumentRequest) Validate() []FieldError {
	var errors []FieldError
	if !r.Type.Valid() {
		errors = append(errors, FieldError{Field: "type", Message: "invalid instrument type"})
	}
	if r.PurchaseDate.IsZero() {
		errors = append(errors, FieldError{Field: "purchase_date", Message: "purchase_date is required"})
	} else if r.PurchaseDate.After(time.Now()) {
		errors = append(errors, FieldError{Field: "purchase_date", Message: "purchase_date cannot be in the future"})
	}
	return errors
}
