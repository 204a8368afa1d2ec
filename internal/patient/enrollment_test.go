package patient

import (
	"context"
	"errors"
	"testing"
)

type countingStore struct {
	codes map[string]*EnrollmentCode
	err   error
	calls int
}

func (s *countingStore) FindActiveCode(_ context.Context, code string) (*EnrollmentCode, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.codes[code], nil
}

func newStore() *countingStore {
	return &countingStore{codes: map[string]*EnrollmentCode{
		"ABC123": {Code: "ABC123", DoctorID: "d-1", DoctorName: "Dr. Lee", IsActive: true},
		"OLD999": {Code: "OLD999", DoctorID: "d-2", DoctorName: "Dr. Old", IsActive: false},
		"NODOC1": {Code: "NODOC1", DoctorName: "Dr. Nobody", IsActive: true},
	}}
}

func TestEnrollWithActiveCode(t *testing.T) {
	store := newStore()
	p := &Profile{ID: "p-1", Name: "Sam"}

	res, err := Enroll(context.Background(), p, "  abc123 ", store)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if !res.Enrolled || res.DoctorID != "d-1" || res.DoctorName != "Dr. Lee" {
		t.Errorf("result = %+v", res)
	}
	if !p.IsEnrolled || p.DoctorID != "d-1" || p.DoctorCode != "ABC123" {
		t.Errorf("profile = %+v", p)
	}
}

func TestEnrollRejectsWithoutChangingProfile(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantLookup bool
	}{
		{"too short", "ABC12", false},
		{"too long", "ABC1234", false},
		{"empty", "   ", false},
		{"unknown", "ZZZ000", true},
		{"inactive", "old999", true},
		{"active without doctor", "nodoc1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			p := &Profile{ID: "p-1", Name: "Sam"}

			res, err := Enroll(context.Background(), p, tt.code, store)
			if err != nil {
				t.Fatalf("Enroll: %v", err)
			}
			if res.Enrolled {
				t.Errorf("enrolled with %q", tt.code)
			}
			if p.IsEnrolled || p.DoctorID != "" {
				t.Errorf("profile changed: %+v", p)
			}
			if (store.calls > 0) != tt.wantLookup {
				t.Errorf("lookups = %d, want lookup %v", store.calls, tt.wantLookup)
			}
		})
	}
}

func TestEnrollStoreError(t *testing.T) {
	boom := errors.New("mongo down")
	store := &countingStore{err: boom}

	_, err := Enroll(context.Background(), &Profile{}, "ABC123", store)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestEnrollRelinks(t *testing.T) {
	store := newStore()
	store.codes["NEW456"] = &EnrollmentCode{Code: "NEW456", DoctorID: "d-3", DoctorName: "Dr. New", IsActive: true}
	p := &Profile{ID: "p-1", Name: "Sam"}

	_, _ = Enroll(context.Background(), p, "ABC123", store)
	res, _ := Enroll(context.Background(), p, "NEW456", store)

	if !res.Enrolled || p.DoctorID != "d-3" {
		t.Errorf("profile not re-linked: %+v", p)
	}

	res, _ = Enroll(context.Background(), p, "bad", store)
	if res.Enrolled || p.DoctorID != "d-3" || !p.IsEnrolled {
		t.Errorf("bad code changed enrollment: %+v", p)
	}
}
