package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/harentsoaR/healthref-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ownerDoc decodes the referral-relevant fields of any account collection.
type ownerDoc struct {
	ID             primitive.ObjectID   `bson:"_id"`
	FullName       string               `bson:"fullName"`
	DoctorName     string               `bson:"doctorName"`
	Email          string               `bson:"email"`
	Phone          string               `bson:"phone"`
	Specialization string               `bson:"specialization"`
	ReferralCode   string               `bson:"referralCode"`
	Referrals      []primitive.ObjectID `bson:"referrals"`
}

// accounts implements the referral and commission operations shared by
// the users, doctors and partners collections.
type accounts struct {
	coll    *mongo.Collection
	variant models.Variant
}

func (a *accounts) Variant() models.Variant { return a.variant }

// FindByReferralCode returns the owner of code in this collection.
func (a *accounts) FindByReferralCode(ctx context.Context, code string) (*models.ReferralOwner, error) {
	doc, err := findOne[ownerDoc](ctx, a.coll, bson.M{"referralCode": code})
	if err != nil {
		return nil, err
	}
	return a.owner(doc), nil
}

// FindOwner returns the account with id as a referral owner.
func (a *accounts) FindOwner(ctx context.Context, id primitive.ObjectID) (*models.ReferralOwner, error) {
	doc, err := findOne[ownerDoc](ctx, a.coll, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	return a.owner(doc), nil
}

func (a *accounts) owner(doc *ownerDoc) *models.ReferralOwner {
	name := doc.FullName
	if a.variant == models.Practitioner {
		name = doc.DoctorName
	}
	return &models.ReferralOwner{
		ID:             doc.ID,
		Variant:        a.variant,
		Role:           a.variant.Role(),
		Name:           name,
		Email:          doc.Email,
		Phone:          doc.Phone,
		Specialization: doc.Specialization,
		ReferralCode:   doc.ReferralCode,
		Referrals:      doc.Referrals,
	}
}

// AddReferral appends customerID to the owner's referrals unless already
// present. It reports whether the list changed.
func (a *accounts) AddReferral(ctx context.Context, ownerID, customerID primitive.ObjectID) (bool, error) {
	res, err := a.coll.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$addToSet": bson.M{"referrals": customerID}},
	)
	if err != nil {
		return false, fmt.Errorf("add referral: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

// IncrementCommission adds delta to the account's commission balance.
func (a *accounts) IncrementCommission(ctx context.Context, id primitive.ObjectID, delta float64) (*models.CommissionView, error) {
	return a.updateCommission(ctx, id, bson.M{
		"$inc": bson.M{"commission": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
}

// SetCommission overwrites the account's commission balance.
func (a *accounts) SetCommission(ctx context.Context, id primitive.ObjectID, value float64) (*models.CommissionView, error) {
	return a.updateCommission(ctx, id, bson.M{
		"$set": bson.M{"commission": value, "updatedAt": time.Now().UTC()},
	})
}

func (a *accounts) updateCommission(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.CommissionView, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(a.commissionProjection())

	var view models.CommissionView
	if err := a.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&view); err != nil {
		return nil, classify(err)
	}
	return &view, nil
}

func (a *accounts) commissionProjection() bson.M {
	if a.variant == models.Practitioner {
		return bson.M{"doctorName": 1, "email": 1, "specialization": 1, "commission": 1}
	}
	return bson.M{"fullName": 1, "email": 1, "phone": 1, "commission": 1}
}

// MarkAccountDetails flags that the account has registered payout details.
func (a *accounts) MarkAccountDetails(ctx context.Context, id primitive.ObjectID) error {
	res, err := a.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isAccountDetails": true, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("mark account details: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
