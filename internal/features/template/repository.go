package template

import (
	"context"
	"time"

	"go-wms/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListOptions narrows and pages the template listing
type ListOptions struct {
	Category  string
	IsActive  *bool
	IsPublic  *bool
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type TemplateRepository interface {
	Create(ctx context.Context, t *ReportTemplate) error
	GetByID(ctx context.Context, id string) (*ReportTemplate, error)
	GetByCode(ctx context.Context, code string) (*ReportTemplate, error)
	List(ctx context.Context, opts ListOptions) ([]ReportTemplate, int64, error)
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
}

type TemplateRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewTemplateRepository(db *database.MongodbDB) TemplateRepository {
	return &TemplateRepositoryImpl{
		Collection: db.DB.Collection("report_templates"),
	}
}

func (r *TemplateRepositoryImpl) Create(ctx context.Context, t *ReportTemplate) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	_, err := r.Collection.InsertOne(ctx, t)
	return err
}

func (r *TemplateRepositoryImpl) GetByID(ctx context.Context, id string) (*ReportTemplate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var t ReportTemplate
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepositoryImpl) GetByCode(ctx context.Context, code string) (*ReportTemplate, error) {
	var t ReportTemplate
	if err := r.Collection.FindOne(ctx, bson.M{"code": code}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepositoryImpl) List(ctx context.Context, opts ListOptions) ([]ReportTemplate, int64, error) {
	filter := bson.M{}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.IsActive != nil {
		filter["is_active"] = *opts.IsActive
	}
	if opts.IsPublic != nil {
		filter["is_public"] = *opts.IsPublic
	}
	if opts.Search != "" {
		regex := primitive.Regex{Pattern: opts.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": regex}},
			bson.M{"code": bson.M{"$regex": regex}},
			bson.M{"description": bson.M{"$regex": regex}},
		}
	}

	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := -1
	if opts.SortOrder == "asc" {
		order = 1
	}
	findOpts := options.Find().SetSort(bson.D{{Key: sortBy, Value: order}})
	if opts.Limit > 0 {
		page := opts.Page
		if page < 1 {
			page = 1
		}
		findOpts.SetSkip(int64((page - 1) * opts.Limit)).SetLimit(int64(opts.Limit))
	}

	cursor, err := r.Collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var templates []ReportTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

func (r *TemplateRepositoryImpl) Update(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	set["updated_at"] = time.Now()
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *TemplateRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
