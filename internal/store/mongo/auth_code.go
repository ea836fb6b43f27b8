package mongo

import (
	"context"
	"time"

	"teklip/marketplace/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type authCodeDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"userId"`
	Code      string        `bson:"code"`
	Type      string        `bson:"type"`
	ExpiresAt time.Time     `bson:"expiresAt"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d authCodeDoc) toModel() *model.AuthCode {
	return &model.AuthCode{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Code:      d.Code,
		Type:      model.AuthCodeType(d.Type),
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}
}

func liveCodeFilter(userID string, typ model.AuthCodeType, code string, now time.Time) bson.D {
	return bson.D{
		{Key: "userId", Value: userID},
		{Key: "type", Value: string(typ)},
		{Key: "code", Value: code},
		{Key: "expiresAt", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	}
}

func (s *Store) CreateAuthCode(ctx context.Context, c model.AuthCode) (model.AuthCode, error) {
	doc := authCodeDoc{
		ID:        bson.NewObjectID(),
		UserID:    c.UserID,
		Code:      c.Code,
		Type:      string(c.Type),
		ExpiresAt: c.ExpiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.authCodes.InsertOne(ctx, doc); err != nil {
		return model.AuthCode{}, mapErr(err)
	}
	return *doc.toModel(), nil
}

func (s *Store) FindAuthCode(ctx context.Context, userID string, typ model.AuthCodeType, code string, now time.Time) (*model.AuthCode, error) {
	var doc authCodeDoc
	if err := s.authCodes.FindOne(ctx, liveCodeFilter(userID, typ, code, now)).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toModel(), nil
}

func (s *Store) ConsumeAuthCode(ctx context.Context, userID string, typ model.AuthCodeType, code string, now time.Time) (*model.AuthCode, error) {
	var doc authCodeDoc
	if err := s.authCodes.FindOneAndDelete(ctx, liveCodeFilter(userID, typ, code, now)).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toModel(), nil
}

func (s *Store) DeleteAuthCodes(ctx context.Context, userID string, typ model.AuthCodeType) (int, error) {
	res, err := s.authCodes.DeleteMany(ctx, bson.D{
		{Key: "userId", Value: userID},
		{Key: "type", Value: string(typ)},
	})
	if err != nil {
		return 0, mapErr(err)
	}
	return int(res.DeletedCount), nil
}

func (s *Store) DeleteExpiredAuthCodes(ctx context.Context, before time.Time) (int, error) {
	res, err := s.authCodes.DeleteMany(ctx, bson.D{
		{Key: "expiresAt", Value: bson.D{{Key: "$lte", Value: before.UTC()}}},
	})
	if err != nil {
		return 0, mapErr(err)
	}
	return int(res.DeletedCount), nil
}
