package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core/notice"
)

type NoticeRepository struct {
	db *DB
}

func NewNoticeRepository(db *DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

var _ notice.Repository = (*NoticeRepository)(nil)

func (repo *NoticeRepository) col() *mongo.Collection { return repo.db.collection(colNotices) }

func (repo *NoticeRepository) CreateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	n.ID = uuid.NewString()
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if n.ConfirmedBy == nil {
		n.ConfirmedBy = []string{}
	}
	if _, err := repo.col().InsertOne(ctx, n); err != nil {
		return notice.Notice{}, errors.Wrap(err, "inserting notice")
	}
	return n, nil
}

func (repo *NoticeRepository) QueryAllNotices(ctx context.Context, teacherID string) ([]notice.Notice, error) {
	cur, err := repo.col().Find(ctx, bson.M{"teacherId": teacherID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying notices")
	}
	var notices []notice.Notice
	if err = cur.All(ctx, &notices); err != nil {
		return nil, errors.Wrap(err, "decoding notices")
	}
	return notices, nil
}

func (repo *NoticeRepository) GetNoticeByID(ctx context.Context, id string) (notice.Notice, error) {
	var n notice.Notice
	if err := repo.col().FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notice.Notice{}, notice.ErrNotFound
		}
		return notice.Notice{}, errors.Wrap(err, "getting notice")
	}
	return n, nil
}

func (repo *NoticeRepository) UpdateNotice(ctx context.Context, id string, up notice.UpdateNotice) (notice.Notice, error) {
	set := bson.M{}
	if up.Title != "" {
		set["title"] = up.Title
	}
	if up.Content != "" {
		set["content"] = up.Content
	}
	return repo.findOneAndUpdate(ctx, id, bson.M{
		"$set":         set,
		"$currentDate": bson.M{"updatedAt": true},
	})
}

func (repo *NoticeRepository) DeleteNotice(ctx context.Context, id string) error {
	res, err := repo.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting notice")
	}
	if res.DeletedCount == 0 {
		return notice.ErrNotFound
	}
	return nil
}

// ConfirmNotice uses $addToSet, so repeat confirmations by the same parent
// are no-ops at the document level.
func (repo *NoticeRepository) ConfirmNotice(ctx context.Context, id, parentID string) (notice.Notice, error) {
	return repo.findOneAndUpdate(ctx, id, bson.M{
		"$addToSet":    bson.M{"confirmedBy": parentID},
		"$currentDate": bson.M{"updatedAt": true},
	})
}

// Watch streams list refreshes for a teacher's notices.
func (repo *NoticeRepository) Watch(ctx context.Context, teacherID string, onChange func([]notice.Notice)) (*Subscription, error) {
	return repo.db.watch(ctx, colNotices, bson.M{"teacherId": teacherID}, func(ctx context.Context) {
		notices, err := repo.QueryAllNotices(ctx, teacherID)
		if err != nil {
			repo.db.logger.Warn("mongodb: refreshing notices after change: " + err.Error())
			return
		}
		onChange(notices)
	})
}

func (repo *NoticeRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (notice.Notice, error) {
	var n notice.Notice
	err := repo.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notice.Notice{}, notice.ErrNotFound
		}
		return notice.Notice{}, errors.Wrap(err, "updating notice")
	}
	return n, nil
}
