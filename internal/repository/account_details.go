package repository

import (
	"context"

	"github.com/harentsoaR/healthref-api/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
)

type AccountDetailsRepository struct {
	coll *mongo.Collection
}

func NewAccountDetailsRepository(db *mongo.Database) *AccountDetailsRepository {
	return &AccountDetailsRepository{coll: db.Collection(AccountDetailsCollection)}
}

func (r *AccountDetailsRepository) Insert(ctx context.Context, d *models.AccountDetails) error {
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return classify(err)
	}
	return nil
}

func (r *AccountDetailsRepository) List(ctx context.Context, q models.PageQuery) ([]models.AccountDetails, int64, error) {
	filter := containsFilter(q.Search, "bankName", "accountNumber", "ifscCode", "upi")
	return findPage[models.AccountDetails](ctx, r.coll, filter, q)
}
