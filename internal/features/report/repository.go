package report

import (
	"context"
	"time"

	"go-wms/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListOptions narrows and pages the report listing
type ListOptions struct {
	TemplateID string
	Status     string
	Search     string
	From       *time.Time
	To         *time.Time
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// BucketCount is one group of the statistics aggregations
type BucketCount struct {
	Key   string `bson:"_id" json:"key"`
	Count int64  `bson:"count" json:"count"`
}

// Statistics summarizes stored reports
type Statistics struct {
	Total      int64         `json:"total"`
	ByStatus   []BucketCount `json:"by_status"`
	ByTemplate []BucketCount `json:"by_template"`
	ByFormat   []BucketCount `json:"by_format"`
	DailyTrend []BucketCount `json:"daily_trend"`
}

type ReportRepository interface {
	Create(ctx context.Context, r *CustomReport) error
	GetByID(ctx context.Context, id string) (*CustomReport, error)
	List(ctx context.Context, opts ListOptions) ([]CustomReport, int64, error)
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
	ListScheduled(ctx context.Context) ([]CustomReport, error)
	ListRecurring(ctx context.Context) ([]CustomReport, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type ReportRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReportRepository(db *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Collection: db.DB.Collection("custom_reports"),
	}
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, report *CustomReport) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	report.CreatedAt = time.Now()
	report.UpdatedAt = time.Now()
	_, err := r.Collection.InsertOne(ctx, report)
	return err
}

func (r *ReportRepositoryImpl) GetByID(ctx context.Context, id string) (*CustomReport, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var report CustomReport
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepositoryImpl) List(ctx context.Context, opts ListOptions) ([]CustomReport, int64, error) {
	filter := bson.M{}
	if opts.TemplateID != "" {
		oid, err := primitive.ObjectIDFromHex(opts.TemplateID)
		if err != nil {
			return nil, 0, mongo.ErrNoDocuments
		}
		filter["template_id"] = oid
	}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}
	if opts.Search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: opts.Search, Options: "i"}}
	}
	if opts.From != nil || opts.To != nil {
		created := bson.M{}
		if opts.From != nil {
			created["$gte"] = *opts.From
		}
		if opts.To != nil {
			created["$lte"] = *opts.To
		}
		filter["created_at"] = created
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

	var reports []CustomReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *ReportRepositoryImpl) Update(ctx context.Context, id string, set bson.M) error {
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

func (r *ReportRepositoryImpl) Delete(ctx context.Context, id string) error {
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

// ListScheduled returns recurring reports eligible for the batch sweep:
// anything not once-only whose status is not pending. Pending reports
// are excluded here so a run in progress is never re-entered.
func (r *ReportRepositoryImpl) ListScheduled(ctx context.Context) ([]CustomReport, error) {
	return r.findAll(ctx, bson.M{
		"schedule_type": bson.M{"$ne": ScheduleOnce},
		"status":        bson.M{"$ne": StatusPending},
	})
}

// ListRecurring returns every non-once report for the scheduled view,
// regardless of status.
func (r *ReportRepositoryImpl) ListRecurring(ctx context.Context) ([]CustomReport, error) {
	return r.findAll(ctx, bson.M{
		"schedule_type": bson.M{"$ne": ScheduleOnce},
	})
}

func (r *ReportRepositoryImpl) findAll(ctx context.Context, filter bson.M) ([]CustomReport, error) {
	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []CustomReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepositoryImpl) Statistics(ctx context.Context) (*Statistics, error) {
	total, err := r.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	stats := &Statistics{Total: total}

	byStatus, err := r.groupCounts(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		return nil, err
	}
	stats.ByStatus = byStatus

	byTemplate, err := r.groupCounts(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$toString": "$template_id"},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		return nil, err
	}
	stats.ByTemplate = byTemplate

	byFormat, err := r.groupCounts(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$output_format", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		return nil, err
	}
	stats.ByFormat = byFormat

	since := time.Now().AddDate(0, 0, -30)
	trend, err := r.groupCounts(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"}},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	})
	if err != nil {
		return nil, err
	}
	stats.DailyTrend = trend

	return stats, nil
}

func (r *ReportRepositoryImpl) groupCounts(ctx context.Context, pipeline mongo.Pipeline) ([]BucketCount, error) {
	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []BucketCount
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}
