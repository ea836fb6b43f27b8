package model

import (
	"fmt"
	"net/mail"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

// FieldError describes every rule a single field failed.
type FieldError struct {
	Field   string   `json:"field"`
	Value   string   `json:"value"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

type validator struct {
	errs  []FieldError
	index map[string]int
}

// check records msg against field when ok is false. Secret values are not echoed.
func (v *validator) check(ok bool, field string, value any, msg string) {
	if ok {
		return
	}
	if v.index == nil {
		v.index = make(map[string]int)
	}
	if i, seen := v.index[field]; seen {
		v.errs[i].Errors = append(v.errs[i].Errors, msg)
		return
	}
	shown := ""
	if value != nil {
		shown = fmt.Sprint(value)
	}
	v.index[field] = len(v.errs)
	v.errs = append(v.errs, FieldError{
		Field:   field,
		Value:   shown,
		Message: fmt.Sprintf("%s has wrong value %s.", field, shown),
		Errors:  []string{msg},
	})
}

func (v *validator) result() []FieldError {
	return v.errs
}

func between(s string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= min && n <= max
}

func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateRegistration checks the shape of a registration request. Password
// confirmation equality is a business rule and is not checked here.
func ValidateRegistration(r Registration) []FieldError {
	var v validator
	v.check(between(r.Name, 3, 30), "name", r.Name, "name must be longer than or equal to 3 and shorter than or equal to 30 characters")
	v.check(between(r.Surname, 3, 50), "surname", r.Surname, "surname must be longer than or equal to 3 and shorter than or equal to 50 characters")
	v.check(IsEmail(r.Email), "email", r.Email, "email must be an email")
	v.check(r.Password != "", "password", nil, "password should not be empty")
	v.check(r.PasswordConfirmation != "", "passwordConfirmation", nil, "passwordConfirmation should not be empty")
	return v.result()
}

// ValidateRequired checks that every named value is non-blank.
func ValidateRequired(fields map[string]string, secret ...string) []FieldError {
	hidden := make(map[string]bool, len(secret))
	for _, s := range secret {
		hidden[s] = true
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var v validator
	for _, k := range keys {
		var shown any = fields[k]
		if hidden[k] {
			shown = nil
		}
		v.check(strings.TrimSpace(fields[k]) != "", k, shown, k+" should not be empty")
	}
	return v.result()
}

func ValidatePost(in PostInput) []FieldError {
	var v validator

	switch in.PostCategory {
	case PostCategoryVehicle, PostCategoryProperty:
	default:
		v.check(false, "postCategory", in.PostCategory, "postCategory must be one of: vehicle, property")
	}
	v.check(strings.TrimSpace(in.Title) != "", "title", in.Title, "title should not be empty")
	v.check(strings.TrimSpace(in.Description) != "", "description", in.Description, "description should not be empty")
	v.check(strings.TrimSpace(in.Location) != "", "location", in.Location, "location should not be empty")
	v.check(in.Price >= 0, "price", in.Price, "price must not be negative")

	switch in.ContactType {
	case ContactTypeChat:
	case ContactTypePhone:
		v.check(strings.TrimSpace(in.ContactPhone) != "", "contactPhone", in.ContactPhone, "contactPhone should not be empty")
	default:
		v.check(false, "contactType", in.ContactType, "contactType must be one of: chat, phone")
	}

	v.check(len(in.Images) >= 1, "images", len(in.Images), "images must contain at least 1 elements")
	for i, img := range in.Images {
		v.check(isHTTPURL(img.URL), fmt.Sprintf("images[%d].url", i), img.URL, "url must be a URL address")
	}

	switch in.PostCategory {
	case PostCategoryVehicle:
		v.check(in.Details.Property == nil, "details.property", nil, "property details are not allowed for vehicle posts")
		if in.Details.Vehicle == nil {
			v.check(false, "details.vehicle", nil, "vehicle details are required")
		} else {
			validateVehicle(&v, *in.Details.Vehicle)
		}
	case PostCategoryProperty:
		v.check(in.Details.Vehicle == nil, "details.vehicle", nil, "vehicle details are not allowed for property posts")
		if in.Details.Property != nil {
			p := in.Details.Property
			v.check(p.Area >= 0, "details.property.area", p.Area, "area must not be negative")
			v.check(p.Rooms >= 0, "details.property.rooms", p.Rooms, "rooms must not be negative")
		}
	}

	return v.result()
}

func validateVehicle(v *validator, d VehicleDetails) {
	v.check(strings.TrimSpace(d.Manufacturer) != "", "details.vehicle.manufacturer", d.Manufacturer, "manufacturer should not be empty")
	v.check(strings.TrimSpace(d.Model) != "", "details.vehicle.model", d.Model, "model should not be empty")
	v.check(strings.TrimSpace(d.Year) != "", "details.vehicle.year", d.Year, "year should not be empty")
	v.check(strings.TrimSpace(d.Color) != "", "details.vehicle.color", d.Color, "color should not be empty")
	v.check(strings.TrimSpace(d.Engine) != "", "details.vehicle.engine", d.Engine, "engine should not be empty")
	v.check(strings.TrimSpace(d.VINCode) != "", "details.vehicle.vinCode", d.VINCode, "vinCode should not be empty")
	v.check(d.Mileage >= 0, "details.vehicle.mileage", d.Mileage, "mileage must not be negative")

	switch d.VehicleType {
	case VehicleTypeCar, VehicleTypeMotorcycle, VehicleTypeHeavyVehicle:
	default:
		v.check(false, "details.vehicle.vehicleType", d.VehicleType, "vehicleType must be one of: car, motorcycle, heavy_vehicle")
	}
	switch d.EngineType {
	case EngineTypeDiesel, EngineTypePetrol, EngineTypeElectric, EngineTypeHybrid:
	default:
		v.check(false, "details.vehicle.engineType", d.EngineType, "engineType must be one of: diesel, petrol, electric, hybrid")
	}
	switch d.TransmissionType {
	case TransmissionAuto, TransmissionManual, TransmissionCVT, TransmissionRobotic, TransmissionSemiAuto:
	default:
		v.check(false, "details.vehicle.transmissionType", d.TransmissionType, "transmissionType must be one of: auto, manual, cvt, robotic, semiAuto")
	}
}
