package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccountDetailsStore interface {
	Insert(ctx context.Context, d *models.AccountDetails) error
	List(ctx context.Context, q models.PageQuery) ([]models.AccountDetails, int64, error)
}

type AccountDetailsInput struct {
	BankName      string
	AccountNumber string
	IFSCCode      string
	UPI           string
}

// AccountDetailsView pairs stored details with a summary of their owner.
type AccountDetailsView struct {
	models.AccountDetails
	Owner *models.ReferralOwner `json:"owner"`
}

type AccountDetailsService struct {
	details  AccountDetailsStore
	registry *Registry
	now      func() time.Time
}

func NewAccountDetailsService(details AccountDetailsStore, registry *Registry) *AccountDetailsService {
	return &AccountDetailsService{
		details:  details,
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Add stores payout details for the caller and flags the caller's account.
func (s *AccountDetailsService) Add(ctx context.Context, owner primitive.ObjectID, variant models.Variant, in AccountDetailsInput) (*models.AccountDetails, error) {
	if strings.TrimSpace(in.BankName) == "" || strings.TrimSpace(in.AccountNumber) == "" ||
		strings.TrimSpace(in.IFSCCode) == "" || strings.TrimSpace(in.UPI) == "" {
		return nil, validation("bankName, accountNumber, ifscCode, and upi are required")
	}
	store, err := s.registry.Store(variant)
	if err != nil {
		return nil, validation("Invalid role")
	}

	d := &models.AccountDetails{
		BankName:       strings.TrimSpace(in.BankName),
		AccountNumber:  strings.TrimSpace(in.AccountNumber),
		IFSCCode:       strings.ToUpper(strings.TrimSpace(in.IFSCCode)),
		UPI:            strings.TrimSpace(in.UPI),
		CreatedBy:      owner,
		CreatedByModel: variant.Role(),
	}
	d.Stamp(s.now())

	if err := store.MarkAccountDetails(ctx, owner); errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("%s not found", titleRole(variant))
	} else if err != nil {
		return nil, err
	}
	if err := s.details.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("save account details: %w", err)
	}
	return d, nil
}

// List returns one admin page of account details with owner summaries.
// Owners that no longer exist are reported as nil.
func (s *AccountDetailsService) List(ctx context.Context, q models.PageQuery) (models.Page[AccountDetailsView], error) {
	q = q.Normalize()
	items, total, err := s.details.List(ctx, q)
	if err != nil {
		return models.Page[AccountDetailsView]{}, err
	}
	views := make([]AccountDetailsView, len(items))
	for i, d := range items {
		views[i].AccountDetails = d
		v, ok := models.ParseVariant(d.CreatedByModel)
		if !ok {
			continue
		}
		store, err := s.registry.Store(v)
		if err != nil {
			return models.Page[AccountDetailsView]{}, err
		}
		owner, err := store.FindOwner(ctx, d.CreatedBy)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return models.Page[AccountDetailsView]{}, err
		}
		views[i].Owner = owner
	}
	return models.NewPage(views, total, q), nil
}
