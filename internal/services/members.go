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

// MemberStore persists customers or affiliates.
type MemberStore interface {
	Create(ctx context.Context, m *models.Member) error
	ExistsByContact(ctx context.Context, email, phone string) (bool, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	FindByPhone(ctx context.Context, phone string) (*models.Member, error)
	SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expires time.Time) error
	ConsumeOTP(ctx context.Context, phone, otp string, now time.Time) (*models.Member, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.MemberUpdate) (*models.Member, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, q models.PageQuery) ([]models.Member, int64, error)
}

// Summarizer expands customer ids into public summaries.
type Summarizer interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.MemberSummary, error)
}

// ReferralCreators lists the customers whose bookings used a code.
type ReferralCreators interface {
	CreatorsByReferral(ctx context.Context, code string) ([]primitive.ObjectID, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(userID, role string) (string, error)
}

// OTPDispatcher hands an OTP to the delivery channel without blocking.
type OTPDispatcher interface {
	SendOTP(to Recipient, code string)
}

// MemberDeps wires a MemberService.
type MemberDeps struct {
	Members   MemberStore
	Customers Summarizer
	Cities    Existence
	Bookings  ReferralCreators
	Registry  *Registry
	Tokens    TokenIssuer
	Notifier  OTPDispatcher
	Limiter   Limiter
	OTPTTL    time.Duration
	Log       *zap.Logger
}

// MemberService implements the phone/OTP account flows shared by
// customers and affiliates.
type MemberService struct {
	variant models.Variant
	MemberDeps
	now func() time.Time
}

func NewMemberService(variant models.Variant, deps MemberDeps) *MemberService {
	if deps.OTPTTL <= 0 {
		deps.OTPTTL = 5 * time.Minute
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &MemberService{
		variant:    variant,
		MemberDeps: deps,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemberService) Variant() models.Variant { return s.variant }

type RegisterInput struct {
	FullName string
	Phone    string
	Email    string
	CityID   string
}

// ExistsCode is the errorCode reported when registration hits an existing account.
func (s *MemberService) ExistsCode() string {
	if s.variant == models.Affiliate {
		return "PARTNER_EXISTS"
	}
	return "USER_EXISTS"
}

// Register creates an account with a freshly assigned referral code.
func (s *MemberService) Register(ctx context.Context, in RegisterInput) (*models.Member, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FullName == "" || in.Phone == "" || in.Email == "" || in.CityID == "" {
		return nil, validation("Please provide all required fields")
	}

	cityID, err := primitive.ObjectIDFromHex(in.CityID)
	if err != nil {
		return nil, validation("Invalid city ID")
	}
	ok, err := s.Cities.Exists(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("lookup city: %w", err)
	}
	if !ok {
		return nil, notFound("City not found")
	}

	exists, err := s.Members.ExistsByContact(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, s.existsErr()
	}

	now := s.now()
	m := &models.Member{
		FullName:  in.FullName,
		Phone:     in.Phone,
		Email:     in.Email,
		City:      cityID,
		Role:      s.variant.Role(),
		Referrals: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.Registry.Enroll(ctx, func(ctx context.Context, code string) error {
		m.ID = primitive.NewObjectID()
		m.ReferralCode = code
		return s.Members.Create(ctx, m)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, s.existsErr()
	}
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", s.variant, err)
	}
	return m, nil
}

func (s *MemberService) existsErr() error {
	return conflict(s.ExistsCode(), fmt.Sprintf("%s with this email or phone already exists", titleRole(s.variant)))
}

// SendOTP issues a fresh code to the member registered under phone.
func (s *MemberService) SendOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return validation("Phone number is required")
	}
	if s.Limiter != nil {
		if err := s.Limiter.Allow(ctx, s.variant.Role()+":"+phone); err != nil {
			return err
		}
	}

	m, err := s.Members.FindByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("%s not found", titleRole(s.variant))
	}
	if err != nil {
		return err
	}

	code, err := utils.RandomSixDigits()
	if err != nil {
		return err
	}
	if err := s.Members.SetOTP(ctx, m.ID, code, s.now().Add(s.OTPTTL)); err != nil {
		return err
	}
	if s.Notifier != nil {
		s.Notifier.SendOTP(Recipient{Name: m.FullName, Phone: m.Phone, Email: m.Email}, code)
	}
	return nil
}

// VerifyOTP consumes a valid code and returns an access token.
func (s *MemberService) VerifyOTP(ctx context.Context, phone, otp string) (string, *models.Member, error) {
	phone, otp = strings.TrimSpace(phone), strings.TrimSpace(otp)
	if phone == "" || otp == "" {
		return "", nil, validation("Phone number and OTP are required")
	}

	m, err := s.Members.FindByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, notFound("%s not found", titleRole(s.variant))
	}
	if err != nil {
		return "", nil, err
	}
	now := s.now()
	if m.OTP == "" || m.OTP != otp {
		return "", nil, validation("Invalid OTP")
	}
	if m.OTPExpires == nil || !m.OTPExpires.After(now) {
		return "", nil, validation("OTP has expired")
	}

	// A concurrent verify may have consumed the code in between.
	m, err = s.Members.ConsumeOTP(ctx, phone, otp, now)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, validation("Invalid OTP")
	}
	if err != nil {
		return "", nil, err
	}

	token, err := s.Tokens.Generate(m.ID.Hex(), s.variant.Role())
	if err != nil {
		return "", nil, err
	}
	return token, m, nil
}

// Profile returns the member with its referrals expanded.
func (s *MemberService) Profile(ctx context.Context, id primitive.ObjectID) (*models.MemberProfile, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	refs, err := s.Customers.Summaries(ctx, m.Referrals)
	if err != nil {
		return nil, fmt.Errorf("load referrals: %w", err)
	}
	return &models.MemberProfile{Member: *m, Referrals: refs}, nil
}

func (s *MemberService) Get(ctx context.Context, hex string) (*models.Member, error) {
	id, err := parseID(hex, titleRole(s.variant))
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *MemberService) find(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	m, err := s.Members.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("%s not found", titleRole(s.variant))
	}
	return m, err
}

type MemberUpdateInput struct {
	FullName *string
	Phone    *string
	Email    *string
	CityID   *string
}

// UpdateSelf lets a member edit their own profile only.
func (s *MemberService) UpdateSelf(ctx context.Context, caller primitive.ObjectID, hex string, in MemberUpdateInput) (*models.Member, error) {
	id, err := parseID(hex, titleRole(s.variant))
	if err != nil {
		return nil, err
	}
	if id != caller {
		return nil, &Error{Kind: ErrForbidden, Message: "You can only update your own profile"}
	}
	return s.update(ctx, id, in)
}

// Update is the admin edit of any member.
func (s *MemberService) Update(ctx context.Context, hex string, in MemberUpdateInput) (*models.Member, error) {
	id, err := parseID(hex, titleRole(s.variant))
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, in)
}

func (s *MemberService) update(ctx context.Context, id primitive.ObjectID, in MemberUpdateInput) (*models.Member, error) {
	u := models.MemberUpdate{FullName: in.FullName, Phone: in.Phone}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		u.Email = &email
	}
	if in.CityID != nil {
		cityID, err := primitive.ObjectIDFromHex(*in.CityID)
		if err != nil {
			return nil, validation("Invalid city ID")
		}
		ok, err := s.Cities.Exists(ctx, cityID)
		if err != nil {
			return nil, fmt.Errorf("lookup city: %w", err)
		}
		if !ok {
			return nil, notFound("City not found")
		}
		u.City = &cityID
	}

	m, err := s.Members.Update(ctx, id, u)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound("%s not found", titleRole(s.variant))
	case errors.Is(err, repository.ErrDuplicate):
		return nil, s.existsErr()
	}
	return m, err
}

func (s *MemberService) Delete(ctx context.Context, hex string) error {
	id, err := parseID(hex, titleRole(s.variant))
	if err != nil {
		return err
	}
	if err := s.Members.Delete(ctx, id); errors.Is(err, repository.ErrNotFound) {
		return notFound("%s not found", titleRole(s.variant))
	} else if err != nil {
		return err
	}
	return nil
}

func (s *MemberService) List(ctx context.Context, q models.PageQuery) (models.Page[models.Member], error) {
	q = q.Normalize()
	items, total, err := s.Members.List(ctx, q)
	if err != nil {
		return models.Page[models.Member]{}, err
	}
	return models.NewPage(items, total, q), nil
}

// ReferredUsers returns the customers who booked with the member's own
// code. Bookings whose code resolves to another account first are not
// counted.
func (s *MemberService) ReferredUsers(ctx context.Context, id primitive.ObjectID) ([]models.MemberSummary, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.ReferralCode == "" {
		return []models.MemberSummary{}, nil
	}

	owner, err := s.Registry.Resolve(ctx, m.ReferralCode)
	if errors.Is(err, ErrReferralNotFound) {
		return []models.MemberSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	if owner.ID != m.ID {
		return []models.MemberSummary{}, nil
	}

	ids, err := s.Bookings.CreatorsByReferral(ctx, m.ReferralCode)
	if err != nil {
		return nil, err
	}
	return s.Customers.Summaries(ctx, ids)
}

func parseID(hex, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, validation("Invalid %s ID", strings.ToLower(label))
	}
	return id, nil
}
