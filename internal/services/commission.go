package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommissionInput is an admin request against one account's balance.
// Amount is a delta for Increment and the new balance for Set.
type CommissionInput struct {
	ID     string
	Role   string
	Amount *float64
}

// Ledger applies manual commission adjustments. Balances have no floor.
type Ledger struct {
	registry *Registry
}

func NewLedger(registry *Registry) *Ledger {
	return &Ledger{registry: registry}
}

func (l *Ledger) Increment(ctx context.Context, in CommissionInput) (*models.CommissionView, error) {
	store, id, err := l.target(in)
	if err != nil {
		return nil, err
	}
	view, err := store.IncrementCommission(ctx, id, *in.Amount)
	return l.result(view, store.Variant(), err)
}

func (l *Ledger) Set(ctx context.Context, in CommissionInput) (*models.CommissionView, error) {
	store, id, err := l.target(in)
	if err != nil {
		return nil, err
	}
	view, err := store.SetCommission(ctx, id, *in.Amount)
	return l.result(view, store.Variant(), err)
}

func (l *Ledger) target(in CommissionInput) (AccountStore, primitive.ObjectID, error) {
	if in.ID == "" || in.Role == "" || in.Amount == nil {
		return nil, primitive.NilObjectID, validation("id, role, and commission are required")
	}
	variant, ok := models.ParseVariant(in.Role)
	if !ok {
		return nil, primitive.NilObjectID, validation("Invalid role. Must be 'user', 'doctor', or 'partner'")
	}
	id, err := primitive.ObjectIDFromHex(in.ID)
	if err != nil {
		return nil, primitive.NilObjectID, validation("Invalid id")
	}
	store, err := l.registry.Store(variant)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	return store, id, nil
}

func (l *Ledger) result(view *models.CommissionView, v models.Variant, err error) (*models.CommissionView, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("%s not found", titleRole(v))
	}
	if err != nil {
		return nil, fmt.Errorf("update commission: %w", err)
	}
	return view, nil
}

func titleRole(v models.Variant) string {
	switch v {
	case models.Customer:
		return "User"
	case models.Practitioner:
		return "Doctor"
	case models.Affiliate:
		return "Partner"
	}
	return "Account"
}
