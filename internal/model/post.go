package model

import "time"

type PostCategory string

const (
	PostCategoryVehicle  PostCategory = "vehicle"
	PostCategoryProperty PostCategory = "property"
)

type ContactType string

const (
	ContactTypeChat  ContactType = "chat"
	ContactTypePhone ContactType = "phone"
)

type PostStatus string

const (
	PostStatusModeration      PostStatus = "moderation"
	PostStatusChangesRequired PostStatus = "changes_required"
	PostStatusRejected        PostStatus = "rejected"
	PostStatusPublished       PostStatus = "published"
	PostStatusBanned          PostStatus = "banned"
)

// postTransitions lists the moderator-driven status changes.
var postTransitions = map[PostStatus][]PostStatus{
	PostStatusModeration: {
		PostStatusPublished,
		PostStatusChangesRequired,
		PostStatusRejected,
		PostStatusBanned,
	},
	PostStatusPublished: {PostStatusBanned},
}

func (s PostStatus) CanModerateTo(next PostStatus) bool {
	for _, st := range postTransitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// Editable reports whether the owner may edit a post in this status.
func (s PostStatus) Editable() bool {
	return s != PostStatusBanned
}

type ModerationDecision string

const (
	DecisionPublish        ModerationDecision = "publish"
	DecisionRequestChanges ModerationDecision = "request_changes"
	DecisionReject         ModerationDecision = "reject"
	DecisionBan            ModerationDecision = "ban"
)

// Target returns the status a decision moves a post to.
func (d ModerationDecision) Target() (PostStatus, bool) {
	switch d {
	case DecisionPublish:
		return PostStatusPublished, true
	case DecisionRequestChanges:
		return PostStatusChangesRequired, true
	case DecisionReject:
		return PostStatusRejected, true
	case DecisionBan:
		return PostStatusBanned, true
	}
	return "", false
}

func (d ModerationDecision) RequiresReason() bool {
	return d != DecisionPublish
}

type VehicleType string

const (
	VehicleTypeCar          VehicleType = "car"
	VehicleTypeMotorcycle   VehicleType = "motorcycle"
	VehicleTypeHeavyVehicle VehicleType = "heavy_vehicle"
)

type EngineType string

const (
	EngineTypeDiesel   EngineType = "diesel"
	EngineTypePetrol   EngineType = "petrol"
	EngineTypeElectric EngineType = "electric"
	EngineTypeHybrid   EngineType = "hybrid"
)

type TransmissionType string

const (
	TransmissionAuto     TransmissionType = "auto"
	TransmissionManual   TransmissionType = "manual"
	TransmissionCVT      TransmissionType = "cvt"
	TransmissionRobotic  TransmissionType = "robotic"
	TransmissionSemiAuto TransmissionType = "semiAuto"
)

type PostImage struct {
	Caption string `json:"caption,omitempty"`
	URL     string `json:"url"`
}

type VehicleDetails struct {
	Manufacturer     string           `json:"manufacturer"`
	Model            string           `json:"model"`
	Year             string           `json:"year"`
	Color            string           `json:"color"`
	VehicleType      VehicleType      `json:"vehicleType"`
	EngineType       EngineType       `json:"engineType"`
	TransmissionType TransmissionType `json:"transmissionType"`
	Engine           string           `json:"engine"`
	Mileage          float64          `json:"mileage"`
	VINCode          string           `json:"vinCode"`
}

type PropertyDetails struct {
	Caption string  `json:"caption,omitempty"`
	URL     string  `json:"url,omitempty"`
	Area    float64 `json:"area,omitempty"`
	Rooms   int     `json:"rooms,omitempty"`
}

// PostDetails holds exactly one of the category specific blocks.
type PostDetails struct {
	Vehicle  *VehicleDetails  `json:"vehicle,omitempty"`
	Property *PropertyDetails `json:"property,omitempty"`
}

// PostInput is the owner editable part of a post.
type PostInput struct {
	PostCategory   PostCategory `json:"postCategory"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Location       string       `json:"location"`
	Price          float64      `json:"price"`
	ContactType    ContactType  `json:"contactType"`
	ContactPhone   string       `json:"contactPhone"`
	CreditEligible bool         `json:"creditEligible"`
	SwapEligible   bool         `json:"swapEligible"`
	Images         []PostImage  `json:"images"`
	Details        PostDetails  `json:"details"`
}

type Post struct {
	ID             string       `json:"id"`
	PostCategory   PostCategory `json:"postCategory"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	IsFeatured     bool         `json:"isFeatured"`
	OwnerID        string       `json:"ownerId"`
	Location       string       `json:"location"`
	Price          float64      `json:"price"`
	Status         PostStatus   `json:"status"`
	ContactType    ContactType  `json:"contactType"`
	ContactPhone   string       `json:"contactPhone,omitempty"`
	CreditEligible bool         `json:"creditEligible"`
	SwapEligible   bool         `json:"swapEligible"`
	Images         []PostImage  `json:"images"`
	Details        PostDetails  `json:"details"`
	ModeratedBy    string       `json:"moderatedBy,omitempty"`
	RejectReason   string       `json:"rejectReason,omitempty"`
	PublishedAt    *time.Time   `json:"publishedAt,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// ApplyInput copies the owner editable fields onto p.
func (p *Post) ApplyInput(in PostInput) {
	p.PostCategory = in.PostCategory
	p.Title = in.Title
	p.Description = in.Description
	p.Location = in.Location
	p.Price = in.Price
	p.ContactType = in.ContactType
	p.ContactPhone = in.ContactPhone
	p.CreditEligible = in.CreditEligible
	p.SwapEligible = in.SwapEligible
	p.Images = append([]PostImage(nil), in.Images...)
	p.Details = in.Details
}
