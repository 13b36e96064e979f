package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/repository"
	"github.com/harentsoaR/healthref-api/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BookingStore persists bookings.
type BookingStore interface {
	Insert(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	List(ctx context.Context, q models.PageQuery) ([]models.Booking, int64, error)
	ListByCreator(ctx context.Context, creator primitive.ObjectID) ([]models.Booking, error)
	ListByDoctor(ctx context.Context, doctor primitive.ObjectID) ([]models.Booking, error)
	CreatorsByReferral(ctx context.Context, code string) ([]primitive.ObjectID, error)
}

// Existence reports whether a referenced document is present.
type Existence interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type BookingService struct {
	bookings   BookingStore
	conditions Existence
	cities     Existence
	doctors    Existence
	registry   *Registry
	now        func() time.Time
	log        *zap.Logger
}

func NewBookingService(bookings BookingStore, conditions, cities, doctors Existence, registry *Registry, log *zap.Logger) *BookingService {
	return &BookingService{
		bookings:   bookings,
		conditions: conditions,
		cities:     cities,
		doctors:    doctors,
		registry:   registry,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

// Create validates a booking request, attributes its referral code and
// stores it. Commission is never credited here.
//
// The referrer's referrals list is written before the booking itself; if
// the insert then fails the attribution stays.
func (s *BookingService) Create(ctx context.Context, creator primitive.ObjectID, in models.BookingInput) (*models.Booking, error) {
	in.Name = strings.TrimSpace(in.Name)
	// usedReferral is stored as sent; lookups use the trimmed code.
	code := strings.TrimSpace(in.UsedReferral)

	if in.Name == "" || in.CityID == "" || in.Relation == "" || in.Age <= 0 ||
		in.TreatmentCondition == "" || in.Date == "" || in.Gender == "" {
		return nil, validation("name, city, relation, age, treatmentCondition, date, and gender are required")
	}

	date, err := parseDate(in.Date)
	if err != nil {
		return nil, validation("Invalid date format")
	}

	conditionID, err := s.mustExist(ctx, s.conditions, in.TreatmentCondition, "Condition")
	if err != nil {
		return nil, err
	}
	cityID, err := s.mustExist(ctx, s.cities, in.CityID, "City")
	if err != nil {
		return nil, err
	}

	var doctorID *primitive.ObjectID
	if in.DoctorID != "" {
		id, err := s.mustExist(ctx, s.doctors, in.DoctorID, "Doctor")
		if err != nil {
			return nil, err
		}
		doctorID = &id
	}

	var usedReferral *string
	if code != "" {
		if !utils.IsSixDigits(code) {
			return nil, validation("Invalid referral code")
		}
		owner, err := s.registry.Resolve(ctx, code)
		if errors.Is(err, ErrReferralNotFound) {
			return nil, validation("Invalid referral code")
		}
		if err != nil {
			return nil, err
		}
		if _, err := s.registry.Record(ctx, owner, creator); err != nil {
			return nil, err
		}
		raw := in.UsedReferral
		usedReferral = &raw
	}

	now := s.now()
	b := &models.Booking{
		ID:                 primitive.NewObjectID(),
		Name:               in.Name,
		City:               cityID,
		Relation:           in.Relation,
		Age:                in.Age,
		TreatmentCondition: conditionID,
		DoctorID:           doctorID,
		Date:               date,
		Gender:             in.Gender,
		UsedReferral:       usedReferral,
		CreatedBy:          creator,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.bookings.Insert(ctx, b); err != nil {
		if usedReferral != nil {
			s.log.Warn("booking insert failed after referral was recorded",
				zap.String("referral", *usedReferral), zap.String("creator", creator.Hex()), zap.Error(err))
		}
		return nil, err
	}
	return b, nil
}

func (s *BookingService) mustExist(ctx context.Context, store Existence, hex, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, validation("Invalid %s ID", strings.ToLower(label))
	}
	ok, err := store.Exists(ctx, id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("lookup %s: %w", strings.ToLower(label), err)
	}
	if !ok {
		return primitive.NilObjectID, notFound("%s ID not found", label)
	}
	return id, nil
}

// List returns one admin page of bookings with their referrers resolved.
func (s *BookingService) List(ctx context.Context, q models.PageQuery) (models.Page[models.BookingView], error) {
	q = q.Normalize()
	items, total, err := s.bookings.List(ctx, q)
	if err != nil {
		return models.Page[models.BookingView]{}, err
	}
	views, err := s.decorate(ctx, items)
	if err != nil {
		return models.Page[models.BookingView]{}, err
	}
	return models.NewPage(views, total, q), nil
}

func (s *BookingService) Get(ctx context.Context, hex string) (*models.BookingView, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, validation("Invalid booking ID")
	}
	b, err := s.bookings.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Booking not found")
	}
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, []models.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListOwn returns the bookings a customer created, newest first.
func (s *BookingService) ListOwn(ctx context.Context, creator primitive.ObjectID) ([]models.BookingView, error) {
	items, err := s.bookings.ListByCreator(ctx, creator)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, items)
}

// ListForDoctor returns the bookings that name the doctor, newest first.
func (s *BookingService) ListForDoctor(ctx context.Context, doctor primitive.ObjectID) ([]models.BookingView, error) {
	items, err := s.bookings.ListByDoctor(ctx, doctor)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, items)
}

// decorate resolves each booking's referral code as of now. A code that no
// longer resolves yields a nil referrer.
func (s *BookingService) decorate(ctx context.Context, items []models.Booking) ([]models.BookingView, error) {
	cache := map[string]*models.ReferralOwner{}
	views := make([]models.BookingView, len(items))
	for i, b := range items {
		views[i].Booking = b
		if b.UsedReferral == nil {
			continue
		}
		code := strings.TrimSpace(*b.UsedReferral)
		if code == "" {
			continue
		}
		owner, seen := cache[code]
		if !seen {
			var err error
			owner, err = s.registry.Resolve(ctx, code)
			if errors.Is(err, ErrReferralNotFound) {
				owner, err = nil, nil
			}
			if err != nil {
				return nil, err
			}
			cache[code] = owner
		}
		views[i].ReferredBy = owner
	}
	return views, nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
