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
)

// DoctorStore persists practitioners.
type DoctorStore interface {
	Create(ctx context.Context, d *models.Doctor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	FindByEmail(ctx context.Context, email string) (*models.Doctor, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error)
	SetWishlisted(ctx context.Context, id primitive.ObjectID, on bool) (*models.Doctor, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, q models.PageQuery) ([]models.Doctor, int64, error)
}

type DoctorService struct {
	doctors   DoctorStore
	hospitals Existence
	customers Summarizer
	registry  *Registry
	tokens    TokenIssuer
	passwords utils.PasswordHasher
	now       func() time.Time
}

func NewDoctorService(doctors DoctorStore, hospitals Existence, customers Summarizer, registry *Registry, tokens TokenIssuer) *DoctorService {
	return &DoctorService{
		doctors:   doctors,
		hospitals: hospitals,
		customers: customers,
		registry:  registry,
		tokens:    tokens,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type DoctorInput struct {
	DoctorName     string
	Email          string
	Password       string
	Specialization string
	About          string
	Address        string
	Experience     string
	Clients        string
	HospitalIDs    []string
	Images         []string
}

// Register creates a practitioner with a hashed password and a fresh
// referral code.
func (s *DoctorService) Register(ctx context.Context, in DoctorInput) (*models.Doctor, error) {
	in.DoctorName = strings.TrimSpace(in.DoctorName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.DoctorName == "" || in.Email == "" || in.Password == "" || in.Specialization == "" {
		return nil, validation("doctorName, email, password, and specialization are required")
	}

	hospitals, err := s.hospitalIDs(ctx, in.HospitalIDs)
	if err != nil {
		return nil, err
	}

	_, err = s.doctors.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, conflict("", "Doctor with this email already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, validation("Password must be at most 72 bytes")
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &models.Doctor{
		DoctorName:     in.DoctorName,
		Email:          in.Email,
		Password:       hash,
		Specialization: in.Specialization,
		Images:         nonNil(in.Images),
		Hospitals:      hospitals,
		Address:        in.Address,
		Experience:     in.Experience,
		Clients:        in.Clients,
		About:          in.About,
		Role:           models.RoleDoctor,
		Referrals:      []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err = s.registry.Enroll(ctx, func(ctx context.Context, code string) error {
		d.ID = primitive.NewObjectID()
		d.ReferralCode = code
		return s.doctors.Create(ctx, d)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflict("", "Doctor with this email already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("register doctor: %w", err)
	}
	return d, nil
}

// Login checks the password and returns an access token.
func (s *DoctorService) Login(ctx context.Context, email, password string) (string, *models.Doctor, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, validation("Email and password are required")
	}
	d, err := s.doctors.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, unauthorized("Invalid email or password")
	}
	if err != nil {
		return "", nil, err
	}
	if !s.passwords.Matches(d.Password, password) {
		return "", nil, unauthorized("Invalid email or password")
	}
	token, err := s.tokens.Generate(d.ID.Hex(), models.RoleDoctor)
	if err != nil {
		return "", nil, err
	}
	return token, d, nil
}

func (s *DoctorService) Profile(ctx context.Context, id primitive.ObjectID) (*models.DoctorProfile, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	refs, err := s.customers.Summaries(ctx, d.Referrals)
	if err != nil {
		return nil, fmt.Errorf("load referrals: %w", err)
	}
	return &models.DoctorProfile{Doctor: *d, Referrals: refs}, nil
}

func (s *DoctorService) Get(ctx context.Context, hex string) (*models.Doctor, error) {
	id, err := parseID(hex, "doctor")
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *DoctorService) find(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	d, err := s.doctors.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Doctor not found")
	}
	return d, err
}

func (s *DoctorService) List(ctx context.Context, q models.PageQuery) (models.Page[models.Doctor], error) {
	q = q.Normalize()
	items, total, err := s.doctors.List(ctx, q)
	if err != nil {
		return models.Page[models.Doctor]{}, err
	}
	return models.NewPage(items, total, q), nil
}

type DoctorUpdateInput struct {
	DoctorName     *string
	Specialization *string
	About          *string
	Address        *string
	Experience     *string
	HospitalIDs    []string
	Images         []string
}

func (s *DoctorService) Update(ctx context.Context, hex string, in DoctorUpdateInput) (*models.Doctor, error) {
	id, err := parseID(hex, "doctor")
	if err != nil {
		return nil, err
	}
	u := models.DoctorUpdate{
		DoctorName:     in.DoctorName,
		Specialization: in.Specialization,
		About:          in.About,
		Address:        in.Address,
		Experience:     in.Experience,
		Images:         in.Images,
	}
	if in.HospitalIDs != nil {
		if u.Hospitals, err = s.hospitalIDs(ctx, in.HospitalIDs); err != nil {
			return nil, err
		}
	}
	d, err := s.doctors.Update(ctx, id, u)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Doctor not found")
	}
	return d, err
}

func (s *DoctorService) Delete(ctx context.Context, hex string) error {
	id, err := parseID(hex, "doctor")
	if err != nil {
		return err
	}
	err = s.doctors.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("Doctor not found")
	}
	return err
}

// Wishlist sets or clears the doctor's wishlist flag.
func (s *DoctorService) Wishlist(ctx context.Context, hex string, on bool) (*models.Doctor, error) {
	id, err := parseID(hex, "doctor")
	if err != nil {
		return nil, err
	}
	d, err := s.doctors.SetWishlisted(ctx, id, on)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Doctor not found")
	}
	return d, err
}

func (s *DoctorService) hospitalIDs(ctx context.Context, hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		if h = strings.TrimSpace(h); h == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, validation("Invalid hospital ID")
		}
		ok, err := s.hospitals.Exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lookup hospital: %w", err)
		}
		if !ok {
			return nil, notFound("Hospital ID not found")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
