package mongodb

import (
	"context"

	"github.com/beyondthebrush/portal/students"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ students.Repo = (*StudentRepo)(nil)

// StudentRepo stores registrations in the students collection.
type StudentRepo struct {
	col *mongo.Collection
}

func NewStudentRepo(db *mongo.Database) *StudentRepo {
	return &StudentRepo{col: db.Collection(studentsCollection)}
}

func (r *StudentRepo) Insert(ctx context.Context, record *students.Record) error {
	if _, err := r.col.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return students.ErrDuplicateName
		}
		return errors.Wrap(err, "[StudentRepo.Insert] InsertOne")
	}
	return nil
}

func (r *StudentRepo) GetByName(ctx context.Context, name string) (*students.Record, error) {
	var record students.Record
	err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, students.ErrNotFound
		}
		return nil, errors.Wrap(err, "[StudentRepo.GetByName] FindOne")
	}
	return &record, nil
}

func (r *StudentRepo) GetByNameAndCode(ctx context.Context, name, code string) (*students.Record, error) {
	var record students.Record
	err := r.col.FindOne(ctx, bson.M{"name": name, "access_code": code}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, students.ErrNotFound
		}
		return nil, errors.Wrap(err, "[StudentRepo.GetByNameAndCode] FindOne")
	}
	return &record, nil
}

func (r *StudentRepo) CountByCode(ctx context.Context, code string) (int, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"access_code": code})
	if err != nil {
		return 0, errors.Wrap(err, "[StudentRepo.CountByCode] CountDocuments")
	}
	return int(count), nil
}

func (r *StudentRepo) List(ctx context.Context) ([]*students.Record, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "[StudentRepo.List] Find")
	}
	var list []*students.Record
	if err := cursor.All(ctx, &list); err != nil {
		return nil, errors.Wrap(err, "[StudentRepo.List] cursor.All")
	}
	return list, nil
}

func (r *StudentRepo) UpdateName(ctx context.Context, name, newName string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"name": name}, bson.M{"$set": bson.M{"name": newName}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return students.ErrDuplicateName
		}
		return errors.Wrap(err, "[StudentRepo.UpdateName] UpdateOne")
	}
	if res.MatchedCount == 0 {
		return students.ErrNotFound
	}
	return nil
}

func (r *StudentRepo) Delete(ctx context.Context, name string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return errors.Wrap(err, "[StudentRepo.Delete] DeleteOne")
	}
	if res.DeletedCount == 0 {
		return students.ErrNotFound
	}
	return nil
}
