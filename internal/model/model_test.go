package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validVehiclePost() PostInput {
	return PostInput{
		PostCategory: PostCategoryVehicle,
		Title:        "Audi A8",
		Description:  "Well kept",
		Location:     "Istanbul",
		Price:        25000,
		ContactType:  ContactTypeChat,
		Images:       []PostImage{{URL: "https://cdn.example.com/a8.jpg", Caption: "front"}},
		Details: PostDetails{Vehicle: &VehicleDetails{
			Manufacturer:     "Audi",
			Model:            "A8",
			Year:             "2012",
			Color:            "white",
			VehicleType:      VehicleTypeCar,
			EngineType:       EngineTypePetrol,
			TransmissionType: TransmissionAuto,
			Engine:           "4.2",
			Mileage:          120000,
			VINCode:          "WAUZZZ4H0CN000000",
		}},
	}
}

func fieldNames(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateRegistration(t *testing.T) {
	ok := Registration{Name: "Serdar", Surname: "Ahmedov", Email: "a@b.com", Password: "Pw1", PasswordConfirmation: "Pw1"}
	assert.Empty(t, ValidateRegistration(ok))

	errs := ValidateRegistration(Registration{Name: "Al", Email: "not-an-email", Password: "secret"})
	assert.Equal(t, []string{"name", "surname", "email", "passwordConfirmation"}, fieldNames(errs))
	assert.Equal(t, "Al", errs[0].Value)
	assert.Equal(t, "name has wrong value Al.", errs[0].Message)

	// Mismatched confirmation is not a shape error.
	mismatch := ok
	mismatch.PasswordConfirmation = "other"
	assert.Empty(t, ValidateRegistration(mismatch))
}

func TestValidateRequiredHidesSecrets(t *testing.T) {
	errs := ValidateRequired(map[string]string{"email": "a@b.com", "password": " ", "code": ""}, "password")
	assert.Equal(t, []string{"code", "password"}, fieldNames(errs))
	assert.Equal(t, "", errs[1].Value)
}

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PostInput)
		fields []string
	}{
		{name: "valid vehicle", mutate: func(*PostInput) {}},
		{
			name:   "no images",
			mutate: func(p *PostInput) { p.Images = nil },
			fields: []string{"images"},
		},
		{
			name:   "relative image url",
			mutate: func(p *PostInput) { p.Images = []PostImage{{URL: "/a.jpg"}} },
			fields: []string{"images[0].url"},
		},
		{
			name:   "phone contact without number",
			mutate: func(p *PostInput) { p.ContactType = ContactTypePhone },
			fields: []string{"contactPhone"},
		},
		{
			name:   "unknown category",
			mutate: func(p *PostInput) { p.PostCategory = "boat" },
			fields: []string{"postCategory"},
		},
		{
			name: "bad vehicle enums",
			mutate: func(p *PostInput) {
				p.Details.Vehicle.VehicleType = "tank"
				p.Details.Vehicle.TransmissionType = "steam"
			},
			fields: []string{"details.vehicle.vehicleType", "details.vehicle.transmissionType"},
		},
		{
			name: "property post carrying vehicle details",
			mutate: func(p *PostInput) {
				p.PostCategory = PostCategoryProperty
			},
			fields: []string{"details.vehicle"},
		},
		{
			name:   "negative price",
			mutate: func(p *PostInput) { p.Price = -1 },
			fields: []string{"price"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validVehiclePost()
			tc.mutate(&in)
			got := fieldNames(ValidatePost(in))
			if len(tc.fields) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.fields, got)
		})
	}
}

func TestPostStatusTransitions(t *testing.T) {
	assert.True(t, PostStatusModeration.CanModerateTo(PostStatusPublished))
	assert.True(t, PostStatusModeration.CanModerateTo(PostStatusBanned))
	assert.True(t, PostStatusPublished.CanModerateTo(PostStatusBanned))
	assert.False(t, PostStatusPublished.CanModerateTo(PostStatusRejected))
	assert.False(t, PostStatusRejected.CanModerateTo(PostStatusPublished))
	assert.False(t, PostStatusBanned.CanModerateTo(PostStatusPublished))

	assert.False(t, PostStatusBanned.Editable())
	assert.True(t, PostStatusRejected.Editable())

	target, ok := DecisionRequestChanges.Target()
	assert.True(t, ok)
	assert.Equal(t, PostStatusChangesRequired, target)
	_, ok = ModerationDecision("archive").Target()
	assert.False(t, ok)
	assert.False(t, DecisionPublish.RequiresReason())
}

func TestAuthCodeValidAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := AuthCode{ExpiresAt: now.Add(time.Minute)}
	assert.True(t, c.ValidAt(now))
	assert.False(t, c.ValidAt(now.Add(time.Minute)))
}

func TestUserUpdateApply(t *testing.T) {
	active := true
	hash := "h"
	at := time.Now()
	u := User{}
	UserUpdate{IsActive: &active, PasswordHash: &hash, LastLogin: &at}.Apply(&u)
	assert.True(t, u.IsActive)
	assert.Equal(t, "h", u.PasswordHash)
	assert.False(t, u.IsEmailAddressVerified)
	assert.Equal(t, at, *u.LastLogin)
}
