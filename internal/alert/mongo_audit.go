package alert

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAudit appends audit entries to a collection. Entries are never
// updated or deleted.
type MongoAudit struct {
	collection *mongo.Collection
}

func NewMongoAudit(collection *mongo.Collection) *MongoAudit {
	_ = EnsureAuditIndexes(context.Background(), collection)
	return &MongoAudit{
		collection: collection,
	}
}

func (m *MongoAudit) Record(ctx context.Context, entry AuditEntry) error {
	_, err := m.collection.InsertOne(ctx, entry)
	return err
}

// ForPatient returns a patient's audit trail, newest first.
func (m *MongoAudit) ForPatient(ctx context.Context, patientID string, limit int64) ([]AuditEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := m.collection.Find(ctx, bson.M{"patient_id": patientID}, opts)
	if err != nil {
		return nil, err
	}

	entries := make([]AuditEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func EnsureAuditIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "patient_id", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("patient_timestamp"),
	})
	return err
}
