package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) col() *mongo.Collection { return repo.db.collection(colUsers) }

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	filter := bson.M{"email": email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, ex := range excludedUsers {
			ids = append(ids, ex.ID)
		}
		filter["_id"] = bson.M{"$nin": ids}
	}
	n, err := repo.col().CountDocuments(ctx, filter)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if n > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	if _, err := repo.col().InsertOne(ctx, usr); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	cur, err := repo.col().Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	var users []user.User
	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	if err := repo.col().FindOne(ctx, bson.M{"_id": id}).Decode(&usr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	if err := repo.col().FindOne(ctx, bson.M{"email": email}).Decode(&usr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by email")
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, id string, up user.UpdateUser) (user.User, error) {
	set := bson.M{}
	if up.Name != "" {
		set["name"] = up.Name
	}
	if up.Email != "" {
		set["email"] = up.Email
	}
	if up.Phone != "" {
		set["phone"] = up.Phone
	}
	if up.AcademyName != "" {
		set["academyName"] = up.AcademyName
	}
	if up.ChildStudentIDs != nil {
		set["childStudentIds"] = up.ChildStudentIDs
	}
	if up.IsActive != nil {
		set["isActive"] = *up.IsActive
	}
	if up.PushToken != "" {
		set["pushToken"] = up.PushToken
	}
	return repo.findOneAndUpdate(ctx, id, bson.M{
		"$set":         set,
		"$currentDate": bson.M{"updatedAt": true},
	})
}

func (repo *userRepository) SetUserPassword(ctx context.Context, id string, hash []byte) error {
	_, err := repo.findOneAndUpdate(ctx, id, bson.M{
		"$set":         bson.M{"passwordHash": hash},
		"$currentDate": bson.M{"updatedAt": true},
	})
	return err
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, at time.Time) (user.User, error) {
	return repo.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{"lastLogin": at}})
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := repo.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (user.User, error) {
	var usr user.User
	err := repo.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&usr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}
