package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/microfix/dashboard/internal/infrastructure/db"
	"github.com/microfix/dashboard/internal/processing/links"
)

type LinksRepository struct {
	coll  *mongo.Collection
	newID func() string
}

// linkDoc keeps the relational column names so exports look the same from
// every store.
type linkDoc struct {
	ID          string   `bson:"_id"`
	Title       string   `bson:"title"`
	URL         string   `bson:"url"`
	Description string   `bson:"description,omitempty"`
	ImageURL    string   `bson:"imageUrl,omitempty"`
	Tags        []string `bson:"tags"`
	CreatedAt   int64    `bson:"createdAt"`
}

func NewLinksRepository(m *db.Mongo) (*LinksRepository, error) {
	repo := &LinksRepository{
		coll:  m.Collection("links"),
		newID: uuid.NewString,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *LinksRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	return err
}

func (r *LinksRepository) List(ctx context.Context) ([]links.Link, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []linkDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]links.Link, 0, len(docs))
	for _, doc := range docs {
		out = append(out, mapLinkDoc(doc))
	}
	return out, nil
}

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	if link == nil {
		return errors.New("link is nil")
	}
	link.ID = r.newID()

	doc := linkDoc{
		ID:          link.ID,
		Title:       link.Title,
		URL:         link.URL,
		Description: link.Description,
		ImageURL:    link.ImageURL,
		Tags:        link.Tags,
		CreatedAt:   link.CreatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

func (r *LinksRepository) Update(ctx context.Context, id string, in links.UpdateLinkInput) (*links.Link, error) {
	set := updateSet(in)

	var doc linkDoc
	var err error
	if len(set) == 0 {
		err = r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	} else {
		err = r.coll.FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, links.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	l := mapLinkDoc(doc)
	return &l, nil
}

func (r *LinksRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func updateSet(in links.UpdateLinkInput) bson.M {
	set := bson.M{}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.URL != nil {
		set["url"] = *in.URL
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.ImageURL != nil {
		set["imageUrl"] = *in.ImageURL
	}
	if in.Tags != nil {
		tags := *in.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	return set
}

func mapLinkDoc(doc linkDoc) links.Link {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return links.Link{
		ID:          doc.ID,
		Title:       doc.Title,
		URL:         doc.URL,
		Description: doc.Description,
		ImageURL:    doc.ImageURL,
		Tags:        tags,
		CreatedAt:   doc.CreatedAt,
	}
}
