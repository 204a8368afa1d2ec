package patient

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Profile) error
	FindByID(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	UpdateStatus(ctx context.Context, s Status) error
	FindStatus(ctx context.Context, id string) (*Status, error)
	CodeStore
}

type patientRepository struct {
	patients *mongo.Collection
	codes    *mongo.Collection
}

func NewPatientRepository(patients, codes *mongo.Collection) PatientRepository {
	_ = EnsurePatientIndexes(context.Background(), codes)
	return &patientRepository{
		patients: patients,
		codes:    codes,
	}
}

func (r *patientRepository) Create(ctx context.Context, p *Profile) error {
	_, err := r.patients.InsertOne(ctx, p)
	return err
}

func (r *patientRepository) FindByID(ctx context.Context, id string) (*Profile, error) {
	var p Profile

	err := r.patients.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &p, nil
}

func (r *patientRepository) Update(ctx context.Context, p *Profile) error {
	_, err := r.patients.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":               p.Name,
		"is_enrolled":        p.IsEnrolled,
		"doctor_id":          p.DoctorID,
		"doctor_name":        p.DoctorName,
		"doctor_code":        p.DoctorCode,
		"emergency_contacts": p.EmergencyContacts,
		"updated_at":         p.UpdatedAt,
	}})
	return err
}

func (r *patientRepository) UpdateStatus(ctx context.Context, s Status) error {
	_, err := r.patients.UpdateOne(ctx, bson.M{"_id": s.PatientID}, bson.M{"$set": bson.M{
		"current_distress_level": s.CurrentDistressLevel,
		"current_mode":           s.CurrentMode,
		"camera_status":          s.CameraStatus,
		"last_activity":          s.LastActivity,
	}})
	return err
}

func (r *patientRepository) FindStatus(ctx context.Context, id string) (*Status, error) {
	var s Status

	opts := options.FindOne().SetProjection(bson.M{
		"current_distress_level": 1,
		"current_mode":           1,
		"camera_status":          1,
		"last_activity":          1,
	})
	err := r.patients.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&s)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &s, nil
}

func (r *patientRepository) FindActiveCode(ctx context.Context, code string) (*EnrollmentCode, error) {
	var c EnrollmentCode

	err := r.codes.FindOne(ctx, bson.M{"code": code, "is_active": true}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &c, nil
}

func EnsurePatientIndexes(ctx context.Context, codes *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	models := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "code", Value: 1},
				{Key: "is_active", Value: 1},
			},
			Options: options.Index().
				SetName("code_active"),
		},
	}
	_, err := codes.Indexes().CreateMany(ctx, models)
	return err
}
