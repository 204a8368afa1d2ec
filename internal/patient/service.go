package patient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PatientService interface {
	CreateProfile(ctx context.Context, req *CreateProfileRequest) (*Profile, error)
	GetProfile(ctx context.Context, id string) (*Profile, error)
	AddContact(ctx context.Context, patientID string, req *AddContactRequest) (*EmergencyContact, error)
	RemoveContact(ctx context.Context, patientID, contactID string) error
	Enroll(ctx context.Context, patientID, code string) (EnrollmentResult, error)
	UpdateStatus(ctx context.Context, s Status) error
	GetStatus(ctx context.Context, id string) (*Status, error)
}

type patientService struct {
	repo   PatientRepository
	logger *zap.SugaredLogger
}

func NewPatientService(repo PatientRepository, logger *zap.SugaredLogger) PatientService {
	return &patientService{
		repo:   repo,
		logger: logger,
	}
}

func (s *patientService) CreateProfile(ctx context.Context, req *CreateProfileRequest) (*Profile, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("patient already exists")
	}

	p := &Profile{
		ID:                id,
		Name:              name,
		EmergencyContacts: []EmergencyContact{},
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	for _, c := range req.Contacts {
		contact, err := NewEmergencyContact(c.Name, c.Phone, c.Relationship)
		if err != nil {
			return nil, err
		}
		if err := p.AddContact(contact); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *patientService) GetProfile(ctx context.Context, id string) (*Profile, error) {
	if id == "" {
		return nil, errors.New("patient_id is required")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (s *patientService) AddContact(ctx context.Context, patientID string, req *AddContactRequest) (*EmergencyContact, error) {
	p, err := s.GetProfile(ctx, patientID)
	if err != nil {
		return nil, err
	}

	contact, err := NewEmergencyContact(req.Name, req.Phone, req.Relationship)
	if err != nil {
		return nil, err
	}
	if err := p.AddContact(contact); err != nil {
		return nil, err
	}

	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Infof("Added emergency contact %s to patient %s", contact.ID, patientID)
	return &contact, nil
}

func (s *patientService) RemoveContact(ctx context.Context, patientID, contactID string) error {
	p, err := s.GetProfile(ctx, patientID)
	if err != nil {
		return err
	}

	if !p.RemoveContact(contactID) {
		return ErrContactNotFound
	}

	p.UpdatedAt = time.Now()
	return s.repo.Update(ctx, p)
}

func (s *patientService) Enroll(ctx context.Context, patientID, code string) (EnrollmentResult, error) {
	p, err := s.GetProfile(ctx, patientID)
	if err != nil {
		return EnrollmentResult{}, err
	}

	res, err := Enroll(ctx, p, code, s.repo)
	if err != nil {
		return EnrollmentResult{}, err
	}
	if !res.Enrolled {
		s.logger.Infof("Enrollment code rejected for patient %s", patientID)
		return res, nil
	}

	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return EnrollmentResult{}, err
	}

	s.logger.Infof("Patient %s enrolled with doctor %s", patientID, res.DoctorID)
	return res, nil
}

func (s *patientService) UpdateStatus(ctx context.Context, st Status) error {
	if st.PatientID == "" {
		return errors.New("patient_id is required")
	}
	return s.repo.UpdateStatus(ctx, st)
}

func (s *patientService) GetStatus(ctx context.Context, id string) (*Status, error) {
	st, err := s.repo.FindStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrPatientNotFound
	}
	return st, nil
}
