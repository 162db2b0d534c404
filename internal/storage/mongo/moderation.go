package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/storage"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// hiddenDoc — удалённый список скрытых id зрителя.
type hiddenDoc struct {
	ViewerID  string    `bson:"_id"`
	IDs       []string  `bson:"ids"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type reportDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	TargetID   string             `bson:"target_id"`
	ReporterID string             `bson:"reporter_id"`
	Reason     string             `bson:"reason"`
	Details    string             `bson:"details,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

// Hidden возвращает удалённый список скрытых id; отсутствие документа — пустой список.
func (m *Mongo) Hidden(ctx context.Context, viewerID string) ([]string, error) {
	const op = "storage/mongo/Hidden"

	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	var doc hiddenDoc
	err := m.hidden.FindOne(ctx, bson.D{{Key: "_id", Value: viewerID}}).Decode(&doc)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, wrapUnavailable(err))
	}

	if doc.IDs == nil {
		return []string{}, nil
	}

	return doc.IDs, nil
}

// SetHidden полностью заменяет список (upsert).
func (m *Mongo) SetHidden(ctx context.Context, viewerID string, ids []string) error {
	const op = "storage/mongo/SetHidden"

	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	if ids == nil {
		ids = []string{}
	}

	_, err := m.hidden.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: viewerID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "ids", Value: ids},
			{Key: "updated_at", Value: toMS(m.now())},
		}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, wrapUnavailable(err))
	}

	return nil
}

// ReportContent сохраняет жалобу. Комментарий должен существовать; повторная жалоба
// того же пользователя на тот же комментарий — storage.ErrConflict.
func (m *Mongo) ReportContent(ctx context.Context, report models.Report) (*models.Report, error) {
	const op = "storage/mongo/ReportContent"

	report.TargetID = strings.TrimSpace(report.TargetID)
	report.ReporterID = strings.TrimSpace(report.ReporterID)
	report.Details = strings.TrimSpace(report.Details)

	if err := validate.Struct(report); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrInvalidArgument, err)
	}

	if _, err := m.liveComment(ctx, report.TargetID); err != nil {
		return nil, fmt.Errorf("%s: target: %w", op, err)
	}

	doc := reportDoc{
		TargetID:   report.TargetID,
		ReporterID: report.ReporterID,
		Reason:     string(report.Reason),
		Details:    report.Details,
		CreatedAt:  toMS(m.now()),
	}

	res, err := m.reports.InsertOne(ctx, doc)
	if mongodriver.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, wrapUnavailable(err))
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid.Hex()
	}
	report.CreatedAt = doc.CreatedAt

	return &report, nil
}
