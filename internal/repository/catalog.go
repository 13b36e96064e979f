package repository

import (
	"context"
	"fmt"

	"github.com/harentsoaR/healthref-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Catalog is a plain CRUD collection of reference documents such as
// cities, treatments or banners.
type Catalog[T any] struct {
	coll         *mongo.Collection
	searchFields []string
}

func NewCatalog[T any](db *mongo.Database, name string, searchFields ...string) *Catalog[T] {
	return &Catalog[T]{coll: db.Collection(name), searchFields: searchFields}
}

func NewCities(db *mongo.Database) *Catalog[models.City] {
	return NewCatalog[models.City](db, CitiesCollection, "name")
}

func NewTreatments(db *mongo.Database) *Catalog[models.Treatment] {
	return NewCatalog[models.Treatment](db, TreatmentsCollection, "name", "overview")
}

func NewConditions(db *mongo.Database) *Catalog[models.Condition] {
	return NewCatalog[models.Condition](db, ConditionsCollection, "name", "overview")
}

func NewHospitals(db *mongo.Database) *Catalog[models.Hospital] {
	return NewCatalog[models.Hospital](db, HospitalsCollection, "hospitalName", "address")
}

func NewBanners(db *mongo.Database) *Catalog[models.Banner] {
	return NewCatalog[models.Banner](db, BannersCollection, "name")
}

func (c *Catalog[T]) Insert(ctx context.Context, doc *T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return classify(err)
	}
	return nil
}

func (c *Catalog[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return findOne[T](ctx, c.coll, bson.M{"_id": id})
}

func (c *Catalog[T]) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := c.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", c.coll.Name(), err)
	}
	return n > 0, nil
}

// All returns every document, oldest first.
func (c *Catalog[T]) All(ctx context.Context) ([]T, error) {
	return findAll[T](ctx, c.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (c *Catalog[T]) List(ctx context.Context, q models.PageQuery) ([]T, int64, error) {
	return findPage[T](ctx, c.coll, containsFilter(q.Search, c.searchFields...), q)
}

// FindBy returns the documents whose field equals value.
func (c *Catalog[T]) FindBy(ctx context.Context, field string, value any) ([]T, error) {
	return findAll[T](ctx, c.coll, bson.M{field: value})
}

func (c *Catalog[T]) Search(ctx context.Context, term string, limit int64) ([]T, error) {
	opts := options.Find().SetLimit(limit)
	return findAll[T](ctx, c.coll, containsFilter(term, c.searchFields...), opts)
}

// Update applies set to the document and returns it as stored afterwards.
func (c *Catalog[T]) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	return findOneAndSet[T](ctx, c.coll, id, set)
}

func (c *Catalog[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, c.coll, id)
}
