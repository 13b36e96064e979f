package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/repository"
	"github.com/harentsoaR/healthref-api/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxCodeAttempts bounds how many fresh referral codes Enroll will try
// before giving up on an account creation.
const maxCodeAttempts = 16

var ErrCodeSpaceExhausted = errors.New("could not allocate a unique referral code")

// AccountStore is one account collection seen through its referral and
// commission fields.
type AccountStore interface {
	Variant() models.Variant
	FindByReferralCode(ctx context.Context, code string) (*models.ReferralOwner, error)
	FindOwner(ctx context.Context, id primitive.ObjectID) (*models.ReferralOwner, error)
	AddReferral(ctx context.Context, ownerID, customerID primitive.ObjectID) (bool, error)
	IncrementCommission(ctx context.Context, id primitive.ObjectID, delta float64) (*models.CommissionView, error)
	SetCommission(ctx context.Context, id primitive.ObjectID, value float64) (*models.CommissionView, error)
	MarkAccountDetails(ctx context.Context, id primitive.ObjectID) error
}

// Registry maps each account variant to its store and owns referral code
// assignment, resolution and recording.
type Registry struct {
	stores      map[models.Variant]AccountStore
	newCode     func() (string, error)
	maxAttempts int
}

func NewRegistry(customers, practitioners, affiliates AccountStore) *Registry {
	return &Registry{
		stores: map[models.Variant]AccountStore{
			models.Customer:     customers,
			models.Practitioner: practitioners,
			models.Affiliate:    affiliates,
		},
		newCode:     utils.RandomSixDigits,
		maxAttempts: maxCodeAttempts,
	}
}

// Store returns the collection backing v.
func (r *Registry) Store(v models.Variant) (AccountStore, error) {
	s, ok := r.stores[v]
	if !ok || s == nil {
		return nil, fmt.Errorf("no account store for variant %s", v)
	}
	return s, nil
}

// Enroll draws a candidate referral code and hands it to create, which must
// insert the new account. The unique index on referralCode turns a clash
// into repository.ErrReferralCodeTaken, in which case a new code is drawn.
// Any other error from create is returned unchanged.
func (r *Registry) Enroll(ctx context.Context, create func(ctx context.Context, code string) error) (string, error) {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		code, err := r.newCode()
		if err != nil {
			return "", err
		}
		err = create(ctx, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, repository.ErrReferralCodeTaken) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", ErrCodeSpaceExhausted
}

// Resolve finds the account owning code. Collections are searched in
// models.ResolutionOrder and the first match wins.
func (r *Registry) Resolve(ctx context.Context, code string) (*models.ReferralOwner, error) {
	for _, v := range models.ResolutionOrder {
		store, err := r.Store(v)
		if err != nil {
			return nil, err
		}
		owner, err := store.FindByReferralCode(ctx, code)
		if err == nil {
			return owner, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("resolve referral in %s: %w", v.Collection(), err)
		}
	}
	return nil, ErrReferralNotFound
}

// Record adds customerID to owner's referrals. Only customer owners keep a
// referrals list; for the other variants Record does nothing. Recording
// the same customer twice leaves a single entry.
func (r *Registry) Record(ctx context.Context, owner *models.ReferralOwner, customerID primitive.ObjectID) (bool, error) {
	if owner == nil || owner.Variant != models.Customer {
		return false, nil
	}
	store, err := r.Store(models.Customer)
	if err != nil {
		return false, err
	}
	changed, err := store.AddReferral(ctx, owner.ID, customerID)
	if err != nil {
		return false, fmt.Errorf("record referral: %w", err)
	}
	return changed, nil
}
