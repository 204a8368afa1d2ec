package patient

import (
	"context"
	"sync"
)

// MemoryRepository is used when no MongoDB is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	statuses map[string]Status
	codes    map[string]EnrollmentCode
}

func NewMemoryRepository(codes ...EnrollmentCode) *MemoryRepository {
	r := &MemoryRepository{
		profiles: make(map[string]Profile),
		statuses: make(map[string]Status),
		codes:    make(map[string]EnrollmentCode),
	}
	for _, c := range codes {
		c.Code = NormalizeCode(c.Code)
		r.codes[c.Code] = c
	}
	return r
}

func (r *MemoryRepository) Create(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[p.ID] = clone(*p)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	p = clone(p)
	return &p, nil
}

func (r *MemoryRepository) Update(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[p.ID]; !ok {
		return ErrPatientNotFound
	}
	r.profiles[p.ID] = clone(*p)
	return nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, s Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statuses[s.PatientID] = s
	return nil
}

func (r *MemoryRepository) FindStatus(_ context.Context, id string) (*Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepository) FindActiveCode(_ context.Context, code string) (*EnrollmentCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.codes[code]
	if !ok || !c.IsActive {
		return nil, nil
	}
	return &c, nil
}

func clone(p Profile) Profile {
	p.EmergencyContacts = append([]EmergencyContact(nil), p.EmergencyContacts...)
	return p
}
