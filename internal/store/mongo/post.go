package mongo

import (
	"context"
	"time"

	"teklip/marketplace/internal/model"
	"teklip/marketplace/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type postImageDoc struct {
	Caption string `bson:"caption,omitempty"`
	URL     string `bson:"url"`
}

type vehicleDoc struct {
	Manufacturer     string  `bson:"manufacturer"`
	Model            string  `bson:"model"`
	Year             string  `bson:"year"`
	Color            string  `bson:"color"`
	VehicleType      string  `bson:"vehicleType"`
	EngineType       string  `bson:"engineType"`
	TransmissionType string  `bson:"transmissionType"`
	Engine           string  `bson:"engine"`
	Mileage          float64 `bson:"mileage"`
	VINCode          string  `bson:"vinCode"`
}

type propertyDoc struct {
	Caption string  `bson:"caption,omitempty"`
	URL     string  `bson:"url,omitempty"`
	Area    float64 `bson:"area,omitempty"`
	Rooms   int     `bson:"rooms,omitempty"`
}

type detailsDoc struct {
	Vehicle  *vehicleDoc  `bson:"vehicle,omitempty"`
	Property *propertyDoc `bson:"property,omitempty"`
}

type postDoc struct {
	ID             bson.ObjectID  `bson:"_id,omitempty"`
	PostCategory   string         `bson:"postCategory"`
	Title          string         `bson:"title"`
	Description    string         `bson:"description"`
	IsFeatured     bool           `bson:"isFeatured"`
	OwnerID        string         `bson:"ownerId"`
	Location       string         `bson:"location"`
	Price          float64        `bson:"price"`
	Status         string         `bson:"status"`
	ContactType    string         `bson:"contactType"`
	ContactPhone   string         `bson:"contactPhone,omitempty"`
	CreditEligible bool           `bson:"creditEligible"`
	SwapEligible   bool           `bson:"swapEligible"`
	Images         []postImageDoc `bson:"images"`
	Details        detailsDoc     `bson:"details"`
	ModeratedBy    string         `bson:"moderatedBy,omitempty"`
	RejectReason   string         `bson:"rejectReason,omitempty"`
	PublishedAt    *time.Time     `bson:"publishedAt,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt"`
}

func postToDoc(p model.Post) postDoc {
	d := postDoc{
		PostCategory:   string(p.PostCategory),
		Title:          p.Title,
		Description:    p.Description,
		IsFeatured:     p.IsFeatured,
		OwnerID:        p.OwnerID,
		Location:       p.Location,
		Price:          p.Price,
		Status:         string(p.Status),
		ContactType:    string(p.ContactType),
		ContactPhone:   p.ContactPhone,
		CreditEligible: p.CreditEligible,
		SwapEligible:   p.SwapEligible,
		Images:         make([]postImageDoc, 0, len(p.Images)),
		ModeratedBy:    p.ModeratedBy,
		RejectReason:   p.RejectReason,
		PublishedAt:    p.PublishedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, img := range p.Images {
		d.Images = append(d.Images, postImageDoc{Caption: img.Caption, URL: img.URL})
	}
	if v := p.Details.Vehicle; v != nil {
		d.Details.Vehicle = &vehicleDoc{
			Manufacturer:     v.Manufacturer,
			Model:            v.Model,
			Year:             v.Year,
			Color:            v.Color,
			VehicleType:      string(v.VehicleType),
			EngineType:       string(v.EngineType),
			TransmissionType: string(v.TransmissionType),
			Engine:           v.Engine,
			Mileage:          v.Mileage,
			VINCode:          v.VINCode,
		}
	}
	if pr := p.Details.Property; pr != nil {
		d.Details.Property = &propertyDoc{Caption: pr.Caption, URL: pr.URL, Area: pr.Area, Rooms: pr.Rooms}
	}
	return d
}

func (d postDoc) toModel() model.Post {
	p := model.Post{
		ID:             d.ID.Hex(),
		PostCategory:   model.PostCategory(d.PostCategory),
		Title:          d.Title,
		Description:    d.Description,
		IsFeatured:     d.IsFeatured,
		OwnerID:        d.OwnerID,
		Location:       d.Location,
		Price:          d.Price,
		Status:         model.PostStatus(d.Status),
		ContactType:    model.ContactType(d.ContactType),
		ContactPhone:   d.ContactPhone,
		CreditEligible: d.CreditEligible,
		SwapEligible:   d.SwapEligible,
		Images:         make([]model.PostImage, 0, len(d.Images)),
		ModeratedBy:    d.ModeratedBy,
		RejectReason:   d.RejectReason,
		PublishedAt:    d.PublishedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, img := range d.Images {
		p.Images = append(p.Images, model.PostImage{Caption: img.Caption, URL: img.URL})
	}
	if v := d.Details.Vehicle; v != nil {
		p.Details.Vehicle = &model.VehicleDetails{
			Manufacturer:     v.Manufacturer,
			Model:            v.Model,
			Year:             v.Year,
			Color:            v.Color,
			VehicleType:      model.VehicleType(v.VehicleType),
			EngineType:       model.EngineType(v.EngineType),
			TransmissionType: model.TransmissionType(v.TransmissionType),
			Engine:           v.Engine,
			Mileage:          v.Mileage,
			VINCode:          v.VINCode,
		}
	}
	if pr := d.Details.Property; pr != nil {
		p.Details.Property = &model.PropertyDetails{Caption: pr.Caption, URL: pr.URL, Area: pr.Area, Rooms: pr.Rooms}
	}
	return p
}

func (s *Store) CreatePost(ctx context.Context, p model.Post) (model.Post, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	doc := postToDoc(p)
	doc.ID = bson.NewObjectID()
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return model.Post{}, mapErr(err)
	}
	return doc.toModel(), nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc postDoc
	if err := s.posts.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	p := doc.toModel()
	return &p, nil
}

func (s *Store) ListPosts(ctx context.Context, f store.PostFilter) ([]model.Post, error) {
	filter := bson.D{}
	if f.OwnerID != "" {
		filter = append(filter, bson.E{Key: "ownerId", Value: f.OwnerID})
	}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "postCategory", Value: string(f.Category)})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(store.NormalizeLimit(f.Limit)))

	cur, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(err)
	}

	out := make([]model.Post, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (s *Store) UpdatePost(ctx context.Context, p model.Post) (model.Post, error) {
	oid, err := objectID(p.ID)
	if err != nil {
		return model.Post{}, err
	}

	doc := postToDoc(p)
	set := bson.D{
		{Key: "postCategory", Value: doc.PostCategory},
		{Key: "title", Value: doc.Title},
		{Key: "description", Value: doc.Description},
		{Key: "isFeatured", Value: doc.IsFeatured},
		{Key: "location", Value: doc.Location},
		{Key: "price", Value: doc.Price},
		{Key: "status", Value: doc.Status},
		{Key: "contactType", Value: doc.ContactType},
		{Key: "contactPhone", Value: doc.ContactPhone},
		{Key: "creditEligible", Value: doc.CreditEligible},
		{Key: "swapEligible", Value: doc.SwapEligible},
		{Key: "images", Value: doc.Images},
		{Key: "details", Value: doc.Details},
		{Key: "moderatedBy", Value: doc.ModeratedBy},
		{Key: "rejectReason", Value: doc.RejectReason},
		{Key: "publishedAt", Value: doc.PublishedAt},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}

	var out postDoc
	err = s.posts.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return model.Post{}, mapErr(err)
	}
	return out.toModel(), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
