package mongodb

import (
	"context"

	"github.com/beyondthebrush/portal/codes"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ codes.Repo = (*CodeRepo)(nil)

// CodeRepo stores access codes in the access_codes collection.
type CodeRepo struct {
	col *mongo.Collection
}

func NewCodeRepo(db *mongo.Database) *CodeRepo {
	return &CodeRepo{col: db.Collection(codesCollection)}
}

func (r *CodeRepo) Insert(ctx context.Context, accessCode *codes.AccessCode) error {
	if _, err := r.col.InsertOne(ctx, accessCode); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return codes.ErrDuplicateCode
		}
		return errors.Wrap(err, "[CodeRepo.Insert] InsertOne")
	}
	return nil
}

func (r *CodeRepo) GetByCode(ctx context.Context, code string) (*codes.AccessCode, error) {
	var accessCode codes.AccessCode
	err := r.col.FindOne(ctx, bson.M{"code": code}).Decode(&accessCode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, codes.ErrNotFound
		}
		return nil, errors.Wrap(err, "[CodeRepo.GetByCode] FindOne")
	}
	return &accessCode, nil
}

func (r *CodeRepo) SetActive(ctx context.Context, code string, active bool) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$set": bson.M{"is_active": active}})
	if err != nil {
		return errors.Wrap(err, "[CodeRepo.SetActive] UpdateOne")
	}
	if res.MatchedCount == 0 {
		return codes.ErrNotFound
	}
	return nil
}

func (r *CodeRepo) Delete(ctx context.Context, code string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return errors.Wrap(err, "[CodeRepo.Delete] DeleteOne")
	}
	if res.DeletedCount == 0 {
		return codes.ErrNotFound
	}
	return nil
}

func (r *CodeRepo) List(ctx context.Context) ([]*codes.AccessCode, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "[CodeRepo.List] Find")
	}
	var list []*codes.AccessCode
	if err := cursor.All(ctx, &list); err != nil {
		return nil, errors.Wrap(err, "[CodeRepo.List] cursor.All")
	}
	return list, nil
}

// ReserveUse claims one seat with a single guarded increment: the filter
// only matches an active code whose counter is below its cap (or uncapped),
// so concurrent registrations can never push the counter past max_uses.
func (r *CodeRepo) ReserveUse(ctx context.Context, code string) error {
	filter := bson.M{
		"code":      code,
		"is_active": true,
		"$or": bson.A{
			bson.M{"max_uses": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}},
		},
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"used_count": 1}})
	if err != nil {
		return errors.Wrap(err, "[CodeRepo.ReserveUse] UpdateOne")
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// No match: either the code is gone/inactive, or the cap is reached.
	accessCode, err := r.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if !accessCode.IsActive {
		return codes.ErrNotFound
	}
	return codes.ErrQuotaExceeded
}

func (r *CodeRepo) ReleaseUse(ctx context.Context, code string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"code": code, "used_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"used_count": -1}})
	if err != nil {
		return errors.Wrap(err, "[CodeRepo.ReleaseUse] UpdateOne")
	}
	return nil
}
