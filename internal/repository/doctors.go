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

type DoctorRepository struct {
	accounts
}

func NewDoctorRepository(db *mongo.Database) *DoctorRepository {
	return &DoctorRepository{accounts{coll: db.Collection(models.Practitioner.Collection()), variant: models.Practitioner}}
}

func (r *DoctorRepository) Create(ctx context.Context, d *models.Doctor) error {
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return classify(err)
	}
	return nil
}

func (r *DoctorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	return findOne[models.Doctor](ctx, r.coll, bson.M{"_id": id})
}

func (r *DoctorRepository) FindByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	return findOne[models.Doctor](ctx, r.coll, bson.M{"email": email})
}

func (r *DoctorRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count doctors: %w", err)
	}
	return n > 0, nil
}

func (r *DoctorRepository) Update(ctx context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error) {
	set := bson.M{}
	if u.DoctorName != nil {
		set["doctorName"] = *u.DoctorName
	}
	if u.Specialization != nil {
		set["specialization"] = *u.Specialization
	}
	if u.About != nil {
		set["about"] = *u.About
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.Experience != nil {
		set["experience"] = *u.Experience
	}
	if u.Hospitals != nil {
		set["hospitals"] = u.Hospitals
	}
	if len(u.Images) > 0 {
		set["images"] = u.Images
	}
	return findOneAndSet[models.Doctor](ctx, r.coll, id, set)
}

// SetWishlisted toggles the wishlist flag on a doctor.
func (r *DoctorRepository) SetWishlisted(ctx context.Context, id primitive.ObjectID, on bool) (*models.Doctor, error) {
	return findOneAndSet[models.Doctor](ctx, r.coll, id, bson.M{"wishlisted": on})
}

func (r *DoctorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *DoctorRepository) List(ctx context.Context, q models.PageQuery) ([]models.Doctor, int64, error) {
	return findPage[models.Doctor](ctx, r.coll, containsFilter(q.Search, "doctorName", "specialization", "address"), q)
}

// ListByHospitals returns doctors attached to any of the given hospitals.
func (r *DoctorRepository) ListByHospitals(ctx context.Context, hospitalIDs []primitive.ObjectID) ([]models.Doctor, error) {
	if len(hospitalIDs) == 0 {
		return []models.Doctor{}, nil
	}
	return findAll[models.Doctor](ctx, r.coll, bson.M{"hospitals": bson.M{"$in": hospitalIDs}})
}

func (r *DoctorRepository) Search(ctx context.Context, term string, limit int64) ([]models.Doctor, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "doctorName", Value: 1}})
	return findAll[models.Doctor](ctx, r.coll, containsFilter(term, "doctorName", "specialization"), opts)
}
