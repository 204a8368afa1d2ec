package patient

import (
	"context"
	"strings"
)

const EnrollmentCodeLength = 6

type EnrollmentCode struct {
	Code       string `bson:"code" json:"code"`
	DoctorID   string `bson:"doctor_id" json:"doctor_id"`
	DoctorName string `bson:"doctor_name" json:"doctor_name"`
	IsActive   bool   `bson:"is_active" json:"is_active"`
}

// CodeStore looks up active enrollment codes. A missing or inactive code
// is reported as (nil, nil).
type CodeStore interface {
	FindActiveCode(ctx context.Context, code string) (*EnrollmentCode, error)
}

type EnrollmentResult struct {
	Enrolled   bool   `json:"enrolled"`
	DoctorID   string `json:"doctor_id,omitempty"`
	DoctorName string `json:"doctor_name,omitempty"`
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Enroll links the profile to the doctor that issued the code. A wrong code
// leaves the profile untouched; only store failures are errors.
func Enroll(ctx context.Context, p *Profile, code string, store CodeStore) (EnrollmentResult, error) {
	code = NormalizeCode(code)
	if len(code) != EnrollmentCodeLength {
		return EnrollmentResult{}, nil
	}

	rec, err := store.FindActiveCode(ctx, code)
	if err != nil {
		return EnrollmentResult{}, err
	}
	// a code that names no doctor cannot enroll anyone
	if rec == nil || !rec.IsActive || strings.TrimSpace(rec.DoctorID) == "" {
		return EnrollmentResult{}, nil
	}

	p.linkDoctor(rec)

	return EnrollmentResult{
		Enrolled:   true,
		DoctorID:   rec.DoctorID,
		DoctorName: rec.DoctorName,
	}, nil
}
