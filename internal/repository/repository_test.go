package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestClassify(t *testing.T) {
	dupCode := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: healthref.users index: referralCode_unique dup key: { referralCode: \"123456\" }",
	}}}
	dupPhone := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: healthref.users index: phone_unique dup key: { phone: \"555\" }",
	}}}
	other := errors.New("boom")

	assert.Nil(t, classify(nil))
	assert.ErrorIs(t, classify(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, classify(dupCode), ErrReferralCodeTaken)
	assert.ErrorIs(t, classify(dupCode), ErrDuplicate)
	assert.ErrorIs(t, classify(dupPhone), ErrDuplicate)
	assert.NotErrorIs(t, classify(dupPhone), ErrReferralCodeTaken)
	assert.Equal(t, other, classify(other))
}

func TestContainsFilter(t *testing.T) {
	assert.Empty(t, containsFilter("  "))

	f := containsFilter("a.b", "name", "city")
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"name": primitive.Regex{Pattern: `a\.b`, Options: "i"}}, or[0])
}

func TestAccounts(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	ownerID := primitive.NewObjectID()
	customerID := primitive.NewObjectID()

	mt.Run("find by referral code", func(mt *mtest.T) {
		repo := NewMemberRepository(mt.DB, models.Affiliate)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "healthref.partners", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: ownerID},
			{Key: "fullName", Value: "Asha"},
			{Key: "email", Value: "asha@example.com"},
			{Key: "referralCode", Value: "654321"},
		}))

		owner, err := repo.FindByReferralCode(context.Background(), "654321")
		require.NoError(mt, err)
		assert.Equal(mt, ownerID, owner.ID)
		assert.Equal(mt, models.Affiliate, owner.Variant)
		assert.Equal(mt, "partner", owner.Role)
		assert.Equal(mt, "Asha", owner.Name)
	})

	mt.Run("referral code not found", func(mt *mtest.T) {
		repo := NewDoctorRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "healthref.doctors", mtest.FirstBatch))

		_, err := repo.FindByReferralCode(context.Background(), "000000")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("add referral modifies once", func(mt *mtest.T) {
		repo := NewMemberRepository(mt.DB, models.Customer)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}),
		)

		changed, err := repo.AddReferral(context.Background(), ownerID, customerID)
		require.NoError(mt, err)
		assert.True(mt, changed)

		changed, err = repo.AddReferral(context.Background(), ownerID, customerID)
		require.NoError(mt, err)
		assert.False(mt, changed)
	})

	mt.Run("add referral to missing owner", func(mt *mtest.T) {
		repo := NewMemberRepository(mt.DB, models.Customer)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		_, err := repo.AddReferral(context.Background(), ownerID, customerID)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("increment commission", func(mt *mtest.T) {
		repo := NewMemberRepository(mt.DB, models.Customer)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: ownerID},
			{Key: "fullName", Value: "Ravi"},
			{Key: "email", Value: "ravi@example.com"},
			{Key: "phone", Value: "9000000000"},
			{Key: "commission", Value: 150.0},
		}}))

		view, err := repo.IncrementCommission(context.Background(), ownerID, 50)
		require.NoError(mt, err)
		assert.Equal(mt, 150.0, view.Commission)
		assert.Equal(mt, "Ravi", view.FullName)
	})

	mt.Run("set commission on missing doctor", func(mt *mtest.T) {
		repo := NewDoctorRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.SetCommission(context.Background(), ownerID, 20)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("create with taken referral code", func(mt *mtest.T) {
		repo := NewMemberRepository(mt.DB, models.Customer)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: healthref.users index: referralCode_unique dup key",
		}))

		err := repo.Create(context.Background(), &models.Member{ReferralCode: "123456"})
		assert.ErrorIs(mt, err, ErrReferralCodeTaken)
	})
}

func TestBookingCreatorsByReferral(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("distinct creators", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		repo := NewBookingRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{a, b}}))

		ids, err := repo.CreatorsByReferral(context.Background(), "123456")
		require.NoError(mt, err)
		assert.Equal(mt, []primitive.ObjectID{a, b}, ids)
	})
}
