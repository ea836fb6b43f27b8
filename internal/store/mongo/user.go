package mongo

import (
	"context"
	"strings"
	"time"

	"teklip/marketplace/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type userDoc struct {
	ID                     bson.ObjectID `bson:"_id,omitempty"`
	Name                   string        `bson:"name"`
	Surname                string        `bson:"surname"`
	Gender                 string        `bson:"gender,omitempty"`
	DOB                    *time.Time    `bson:"dob,omitempty"`
	ProfileImage           string        `bson:"profileImage,omitempty"`
	ProfileBannerImage     string        `bson:"profileBannerImage,omitempty"`
	CompanyName            string        `bson:"companyName,omitempty"`
	PhoneNumber            string        `bson:"phoneNumber,omitempty"`
	Email                  string        `bson:"email"`
	Password               string        `bson:"password"`
	IsActive               bool          `bson:"isActive"`
	IsPhoneNumberVerified  bool          `bson:"isPhoneNumberVerified"`
	IsEmailAddressVerified bool          `bson:"isEmailAddressVerified"`
	IsCompanyProfile       bool          `bson:"isCompanyProfile"`
	Rating                 float64       `bson:"rating"`
	LastLogin              *time.Time    `bson:"lastLogin,omitempty"`
	CreatedAt              time.Time     `bson:"createdAt"`
	UpdatedAt              time.Time     `bson:"updatedAt"`
}

func (d userDoc) toModel() *model.User {
	return &model.User{
		ID:                     d.ID.Hex(),
		Name:                   d.Name,
		Surname:                d.Surname,
		Gender:                 model.Gender(d.Gender),
		DOB:                    d.DOB,
		ProfileImage:           d.ProfileImage,
		ProfileBannerImage:     d.ProfileBannerImage,
		CompanyName:            d.CompanyName,
		PhoneNumber:            d.PhoneNumber,
		Email:                  d.Email,
		PasswordHash:           d.Password,
		IsActive:               d.IsActive,
		IsPhoneNumberVerified:  d.IsPhoneNumberVerified,
		IsEmailAddressVerified: d.IsEmailAddressVerified,
		IsCompanyProfile:       d.IsCompanyProfile,
		Rating:                 d.Rating,
		LastLogin:              d.LastLogin,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	now := time.Now().UTC()
	doc := userDoc{
		ID:                     bson.NewObjectID(),
		Name:                   u.Name,
		Surname:                u.Surname,
		Gender:                 string(u.Gender),
		DOB:                    u.DOB,
		ProfileImage:           u.ProfileImage,
		ProfileBannerImage:     u.ProfileBannerImage,
		CompanyName:            u.CompanyName,
		PhoneNumber:            u.PhoneNumber,
		Email:                  normalizeEmail(u.Email),
		Password:               u.PasswordHash,
		IsActive:               u.IsActive,
		IsPhoneNumberVerified:  u.IsPhoneNumberVerified,
		IsEmailAddressVerified: u.IsEmailAddressVerified,
		IsCompanyProfile:       u.IsCompanyProfile,
		Rating:                 u.Rating,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return model.User{}, mapErr(err)
	}
	return *doc.toModel(), nil
}

func (s *Store) findUser(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toModel(), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: normalizeEmail(email)}})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.users.CountDocuments(ctx, bson.D{{Key: "email", Value: normalizeEmail(email)}}, options.Count().SetLimit(1))
	if err != nil {
		return false, mapErr(err)
	}
	return n > 0, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if upd.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *upd.PasswordHash})
	}
	if upd.IsActive != nil {
		set = append(set, bson.E{Key: "isActive", Value: *upd.IsActive})
	}
	if upd.IsEmailAddressVerified != nil {
		set = append(set, bson.E{Key: "isEmailAddressVerified", Value: *upd.IsEmailAddressVerified})
	}
	if upd.IsPhoneNumberVerified != nil {
		set = append(set, bson.E{Key: "isPhoneNumberVerified", Value: *upd.IsPhoneNumberVerified})
	}
	if upd.LastLogin != nil {
		set = append(set, bson.E{Key: "lastLogin", Value: upd.LastLogin.UTC()})
	}

	var doc userDoc
	err = s.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr(err)
	}
	return doc.toModel(), nil
}
