package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
)

// paymentRepository partitions tuition records into one collection per
// YYYY-MM shard. Cross-shard reads (by id, all-records) walk the shard list;
// month and date-range reads hit only the shards they need.
type paymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) shard(month string) *mongo.Collection {
	return repo.db.collection(tuitionCollection(month))
}

func (repo *paymentRepository) shardNames(ctx context.Context) ([]string, error) {
	names, err := repo.db.db.ListCollectionNames(ctx, bson.M{
		"name": bson.M{"$regex": "^" + tuitionPrefix},
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing tuition shards")
	}
	return names, nil
}

func (repo *paymentRepository) CreateRecord(ctx context.Context, r payment.Record) (payment.Record, error) {
	if r.Month == "" {
		r.Month = core.MonthKey(r.Date)
	}
	r.ID = uuid.NewString()
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if _, err := repo.shard(r.Month).InsertOne(ctx, r); err != nil {
		return payment.Record{}, errors.Wrap(err, "inserting payment record")
	}
	return r, nil
}

func (repo *paymentRepository) QueryAllRecords(ctx context.Context, teacherID string) ([]payment.Record, error) {
	shards, err := repo.shardNames(ctx)
	if err != nil {
		return nil, err
	}
	var records []payment.Record
	for _, name := range shards {
		part, err := repo.findIn(ctx, name, bson.M{"teacherId": teacherID})
		if err != nil {
			return nil, err
		}
		records = append(records, part...)
	}
	return records, nil
}

func (repo *paymentRepository) GetRecordByID(ctx context.Context, id string) (payment.Record, error) {
	shards, err := repo.shardNames(ctx)
	if err != nil {
		return payment.Record{}, err
	}
	for _, name := range shards {
		var r payment.Record
		err := repo.db.collection(name).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return payment.Record{}, errors.Wrap(err, "getting payment record")
		}
	}
	return payment.Record{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]payment.Record, error) {
	shards, err := repo.shardNames(ctx)
	if err != nil {
		return nil, err
	}
	var records []payment.Record
	for _, name := range shards {
		part, err := repo.findIn(ctx, name, bson.M{"studentId": studentID})
		if err != nil {
			return nil, err
		}
		records = append(records, part...)
	}
	return records, nil
}

func (repo *paymentRepository) QueryRecordsByMonth(ctx context.Context, teacherID, month string) ([]payment.Record, error) {
	return repo.findIn(ctx, tuitionCollection(month), bson.M{"teacherId": teacherID})
}

func (repo *paymentRepository) QueryRecordsByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]payment.Record, error) {
	filter := bson.M{
		"teacherId": teacherID,
		"date":      bson.M{"$gte": from, "$lte": to},
	}
	var records []payment.Record
	first := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	for m := first; !m.After(to); m = core.AddMonths(m, 1) {
		part, err := repo.findIn(ctx, tuitionCollection(core.MonthKey(m)), filter)
		if err != nil {
			return nil, err
		}
		records = append(records, part...)
	}
	return records, nil
}

func (repo *paymentRepository) UpdateRecord(ctx context.Context, id string, up payment.UpdateRecord) (payment.Record, error) {
	set := bson.M{}
	if up.Status != "" {
		set["status"] = up.Status
	}
	if up.Method != "" {
		set["method"] = up.Method
	}
	update := bson.M{"$set": set, "$currentDate": bson.M{"updatedAt": true}}

	shards, err := repo.shardNames(ctx)
	if err != nil {
		return payment.Record{}, err
	}
	for _, name := range shards {
		var r payment.Record
		err := repo.db.collection(name).FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&r)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return payment.Record{}, errors.Wrap(err, "updating payment record")
		}
	}
	return payment.Record{}, payment.ErrNotFound
}

func (repo *paymentRepository) DeleteRecord(ctx context.Context, id string) error {
	shards, err := repo.shardNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range shards {
		res, err := repo.db.collection(name).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return errors.Wrap(err, "deleting payment record")
		}
		if res.DeletedCount > 0 {
			return nil
		}
	}
	return payment.ErrNotFound
}

func (repo *paymentRepository) CreateExpense(ctx context.Context, e payment.Expense) (payment.Expense, error) {
	e.ID = uuid.NewString()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if _, err := repo.db.collection(colExpenses).InsertOne(ctx, e); err != nil {
		return payment.Expense{}, errors.Wrap(err, "inserting expense")
	}
	return e, nil
}

func (repo *paymentRepository) QueryExpensesByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]payment.Expense, error) {
	cur, err := repo.db.collection(colExpenses).Find(ctx, bson.M{
		"teacherId": teacherID,
		"date":      bson.M{"$gte": from, "$lte": to},
	}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying expenses")
	}
	var expenses []payment.Expense
	if err = cur.All(ctx, &expenses); err != nil {
		return nil, errors.Wrap(err, "decoding expenses")
	}
	return expenses, nil
}

func (repo *paymentRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := repo.db.collection(colExpenses).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting expense")
	}
	if res.DeletedCount == 0 {
		return payment.ErrNotFound
	}
	return nil
}

func (repo *paymentRepository) findIn(ctx context.Context, col string, filter bson.M) ([]payment.Record, error) {
	cur, err := repo.db.collection(col).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying payment records")
	}
	var records []payment.Record
	if err = cur.All(ctx, &records); err != nil {
		return nil, errors.Wrap(err, "decoding payment records")
	}
	return records, nil
}
