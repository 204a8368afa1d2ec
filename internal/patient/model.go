package patient

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const DefaultRelationship = "Contact"

var (
	ErrContactNameRequired  = errors.New("contact name is required")
	ErrContactPhoneRequired = errors.New("contact phone is required")
	ErrDuplicateContact     = errors.New("contact already exists")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrContactNotFound      = errors.New("contact not found")
)

type EmergencyContact struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Phone        string `bson:"phone" json:"phone"`
	Relationship string `bson:"relationship" json:"relationship"`
}

// NewEmergencyContact validates name and phone and assigns a fresh id.
func NewEmergencyContact(name, phone, relationship string) (EmergencyContact, error) {
	return RestoreEmergencyContact(uuid.NewString(), name, phone, relationship)
}

// RestoreEmergencyContact rebuilds a contact that already has an id. An
// empty id gets a new one.
func RestoreEmergencyContact(id, name, phone, relationship string) (EmergencyContact, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	relationship = strings.TrimSpace(relationship)

	if name == "" {
		return EmergencyContact{}, ErrContactNameRequired
	}
	if phone == "" {
		return EmergencyContact{}, ErrContactPhoneRequired
	}
	if relationship == "" {
		relationship = DefaultRelationship
	}
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	return EmergencyContact{
		ID:           id,
		Name:         name,
		Phone:        phone,
		Relationship: relationship,
	}, nil
}

type Profile struct {
	ID                string             `bson:"_id" json:"id"`
	Name              string             `bson:"name" json:"name"`
	IsEnrolled        bool               `bson:"is_enrolled" json:"is_enrolled"`
	DoctorID          string             `bson:"doctor_id,omitempty" json:"doctor_id,omitempty"`
	DoctorName        string             `bson:"doctor_name,omitempty" json:"doctor_name,omitempty"`
	DoctorCode        string             `bson:"doctor_code,omitempty" json:"doctor_code,omitempty"`
	EmergencyContacts []EmergencyContact `bson:"emergency_contacts" json:"emergency_contacts"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

func (p *Profile) AddContact(c EmergencyContact) error {
	if lo.ContainsBy(p.EmergencyContacts, func(e EmergencyContact) bool { return e.ID == c.ID }) {
		return ErrDuplicateContact
	}
	p.EmergencyContacts = append(p.EmergencyContacts, c)
	return nil
}

// RemoveContact reports whether a contact with the id was present.
func (p *Profile) RemoveContact(id string) bool {
	kept := lo.Filter(p.EmergencyContacts, func(e EmergencyContact, _ int) bool { return e.ID != id })
	removed := len(kept) != len(p.EmergencyContacts)
	p.EmergencyContacts = kept
	return removed
}

func (p *Profile) Contacts() []EmergencyContact {
	out := make([]EmergencyContact, len(p.EmergencyContacts))
	copy(out, p.EmergencyContacts)
	return out
}

func (p *Profile) linkDoctor(code *EnrollmentCode) {
	p.DoctorID = code.DoctorID
	p.DoctorName = code.DoctorName
	p.DoctorCode = code.Code
	p.IsEnrolled = true
}

const (
	CameraActive   = "active"
	CameraInactive = "inactive"
)

// Status holds the observable fields the patient and doctor views read.
type Status struct {
	PatientID            string    `bson:"_id" json:"patient_id"`
	CurrentDistressLevel string    `bson:"current_distress_level" json:"current_distress_level"`
	CurrentMode          string    `bson:"current_mode" json:"current_mode"`
	CameraStatus         string    `bson:"camera_status" json:"camera_status"`
	LastActivity         time.Time `bson:"last_activity" json:"last_activity"`
}
