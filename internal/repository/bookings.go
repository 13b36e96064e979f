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

type BookingRepository struct {
	coll *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{coll: db.Collection(BookingsCollection)}
}

func (r *BookingRepository) Insert(ctx context.Context, b *models.Booking) error {
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", classify(err))
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return findOne[models.Booking](ctx, r.coll, bson.M{"_id": id})
}

// List pages through all bookings, searching name, relation and gender.
func (r *BookingRepository) List(ctx context.Context, q models.PageQuery) ([]models.Booking, int64, error) {
	return findPage[models.Booking](ctx, r.coll, containsFilter(q.Search, "name", "relation", "gender"), q)
}

func (r *BookingRepository) ListByCreator(ctx context.Context, creator primitive.ObjectID) ([]models.Booking, error) {
	return findAll[models.Booking](ctx, r.coll, bson.M{"createdBy": creator}, newestFirst())
}

func (r *BookingRepository) ListByDoctor(ctx context.Context, doctor primitive.ObjectID) ([]models.Booking, error) {
	return findAll[models.Booking](ctx, r.coll, bson.M{"doctorId": doctor}, newestFirst())
}

// CreatorsByReferral returns the distinct customers whose bookings used code.
func (r *BookingRepository) CreatorsByReferral(ctx context.Context, code string) ([]primitive.ObjectID, error) {
	values, err := r.coll.Distinct(ctx, "createdBy", bson.M{"usedReferral": code})
	if err != nil {
		return nil, fmt.Errorf("distinct booking creators: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}
