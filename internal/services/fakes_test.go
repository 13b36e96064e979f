package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeMembers is an in-memory users or partners collection with a unique
// referralCode, email and phone.
type fakeMembers struct {
	mu      sync.Mutex
	variant models.Variant
	byID    map[primitive.ObjectID]*models.Member

	createAttempts int
	findErr        error
	addCalls       int
}

func newFakeMembers(v models.Variant) *fakeMembers {
	return &fakeMembers{variant: v, byID: map[primitive.ObjectID]*models.Member{}}
}

func (f *fakeMembers) seed(m models.Member) *models.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.Role == "" {
		m.Role = f.variant.Role()
	}
	cp := m
	f.byID[m.ID] = &cp
	return &cp
}

func (f *fakeMembers) get(id primitive.ObjectID) models.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

func (f *fakeMembers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeMembers) Variant() models.Variant { return f.variant }

func (f *fakeMembers) owner(m *models.Member) *models.ReferralOwner {
	return &models.ReferralOwner{
		ID: m.ID, Variant: f.variant, Role: f.variant.Role(), Name: m.FullName,
		Email: m.Email, Phone: m.Phone, ReferralCode: m.ReferralCode,
		Referrals: append([]primitive.ObjectID(nil), m.Referrals...),
	}
}

func (f *fakeMembers) FindByReferralCode(_ context.Context, code string) (*models.ReferralOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, m := range f.byID {
		if m.ReferralCode == code {
			return f.owner(m), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMembers) FindOwner(_ context.Context, id primitive.ObjectID) (*models.ReferralOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.owner(m), nil
}

func (f *fakeMembers) AddReferral(_ context.Context, ownerID, customerID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	m, ok := f.byID[ownerID]
	if !ok {
		return false, repository.ErrNotFound
	}
	for _, id := range m.Referrals {
		if id == customerID {
			return false, nil
		}
	}
	m.Referrals = append(m.Referrals, customerID)
	return true, nil
}

func (f *fakeMembers) IncrementCommission(_ context.Context, id primitive.ObjectID, delta float64) (*models.CommissionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Commission += delta
	return &models.CommissionView{ID: m.ID, FullName: m.FullName, Email: m.Email, Phone: m.Phone, Commission: m.Commission}, nil
}

func (f *fakeMembers) SetCommission(_ context.Context, id primitive.ObjectID, value float64) (*models.CommissionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Commission = value
	return &models.CommissionView{ID: m.ID, FullName: m.FullName, Email: m.Email, Phone: m.Phone, Commission: m.Commission}, nil
}

func (f *fakeMembers) MarkAccountDetails(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.IsAccountDetails = true
	return nil
}

func (f *fakeMembers) Create(_ context.Context, m *models.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createAttempts++
	for _, o := range f.byID {
		if o.ReferralCode == m.ReferralCode {
			return repository.ErrReferralCodeTaken
		}
		if o.Email == m.Email || o.Phone == m.Phone {
			return fmt.Errorf("%w: contact", repository.ErrDuplicate)
		}
	}
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeMembers) ExistsByContact(_ context.Context, email, phone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.byID {
		if m.Email == email || m.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembers) FindByID(_ context.Context, id primitive.ObjectID) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMembers) FindByPhone(_ context.Context, phone string) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.byID {
		if m.Phone == phone {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMembers) SetOTP(_ context.Context, id primitive.ObjectID, otp string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.OTP, m.OTPExpires = otp, &expires
	return nil
}

func (f *fakeMembers) ConsumeOTP(_ context.Context, phone, otp string, now time.Time) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.byID {
		if m.Phone == phone && m.OTP == otp && m.OTPExpires != nil && m.OTPExpires.After(now) {
			m.OTP, m.OTPExpires = "", nil
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMembers) Update(_ context.Context, id primitive.ObjectID, u models.MemberUpdate) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.FullName != nil {
		m.FullName = *u.FullName
	}
	if u.Phone != nil {
		m.Phone = *u.Phone
	}
	if u.Email != nil {
		m.Email = *u.Email
	}
	if u.City != nil {
		m.City = *u.City
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMembers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeMembers) List(_ context.Context, q models.PageQuery) ([]models.Member, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]models.Member, 0, len(f.byID))
	for _, m := range f.byID {
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.Hex() < all[j].ID.Hex() })
	start := min(int(q.Skip()), len(all))
	end := min(start+int(q.Limit), len(all))
	return all[start:end], int64(len(all)), nil
}

func (f *fakeMembers) Summaries(_ context.Context, ids []primitive.ObjectID) ([]models.MemberSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.MemberSummary{}
	for _, id := range ids {
		if m, ok := f.byID[id]; ok {
			out = append(out, models.MemberSummary{ID: m.ID, FullName: m.FullName, Phone: m.Phone, Email: m.Email, Role: m.Role})
		}
	}
	return out, nil
}

// fakeDoctors is an in-memory doctors collection.
type fakeDoctors struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Doctor
}

func newFakeDoctors() *fakeDoctors {
	return &fakeDoctors{byID: map[primitive.ObjectID]*models.Doctor{}}
}

func (f *fakeDoctors) seed(d models.Doctor) *models.Doctor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	d.Role = models.RoleDoctor
	cp := d
	f.byID[d.ID] = &cp
	return &cp
}

func (f *fakeDoctors) get(id primitive.ObjectID) models.Doctor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

func (f *fakeDoctors) Variant() models.Variant { return models.Practitioner }

func (f *fakeDoctors) owner(d *models.Doctor) *models.ReferralOwner {
	return &models.ReferralOwner{
		ID: d.ID, Variant: models.Practitioner, Role: models.RoleDoctor, Name: d.DoctorName,
		Email: d.Email, Specialization: d.Specialization, ReferralCode: d.ReferralCode,
		Referrals: append([]primitive.ObjectID(nil), d.Referrals...),
	}
}

func (f *fakeDoctors) FindByReferralCode(_ context.Context, code string) (*models.ReferralOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.byID {
		if d.ReferralCode == code {
			return f.owner(d), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDoctors) FindOwner(_ context.Context, id primitive.ObjectID) (*models.ReferralOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.owner(d), nil
}

func (f *fakeDoctors) AddReferral(_ context.Context, ownerID, customerID primitive.ObjectID) (bool, error) {
	return false, errors.New("doctors do not record referrals")
}

func (f *fakeDoctors) IncrementCommission(_ context.Context, id primitive.ObjectID, delta float64) (*models.CommissionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d.Commission += delta
	return &models.CommissionView{ID: d.ID, DoctorName: d.DoctorName, Email: d.Email, Specialization: d.Specialization, Commission: d.Commission}, nil
}

func (f *fakeDoctors) SetCommission(_ context.Context, id primitive.ObjectID, value float64) (*models.CommissionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d.Commission = value
	return &models.CommissionView{ID: d.ID, DoctorName: d.DoctorName, Email: d.Email, Specialization: d.Specialization, Commission: d.Commission}, nil
}

func (f *fakeDoctors) MarkAccountDetails(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.IsAccountDetails = true
	return nil
}

func (f *fakeDoctors) Create(_ context.Context, d *models.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.byID {
		if o.ReferralCode == d.ReferralCode {
			return repository.ErrReferralCodeTaken
		}
		if o.Email == d.Email {
			return fmt.Errorf("%w: email", repository.ErrDuplicate)
		}
	}
	cp := *d
	f.byID[d.ID] = &cp
	return nil
}

func (f *fakeDoctors) FindByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDoctors) FindByEmail(_ context.Context, email string) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.byID {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDoctors) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeDoctors) Update(_ context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.DoctorName != nil {
		d.DoctorName = *u.DoctorName
	}
	if u.Specialization != nil {
		d.Specialization = *u.Specialization
	}
	if u.Hospitals != nil {
		d.Hospitals = u.Hospitals
	}
	if len(u.Images) > 0 {
		d.Images = u.Images
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDoctors) SetWishlisted(_ context.Context, id primitive.ObjectID, on bool) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d.Wishlisted = on
	cp := *d
	return &cp, nil
}

func (f *fakeDoctors) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeDoctors) List(_ context.Context, q models.PageQuery) ([]models.Doctor, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Doctor{}
	for _, d := range f.byID {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

// fakeBookings is an in-memory bookings collection.
type fakeBookings struct {
	mu        sync.Mutex
	items     []models.Booking
	insertErr error
}

func (f *fakeBookings) all() []models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Booking(nil), f.items...)
}

func (f *fakeBookings) Insert(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.items = append(f.items, *b)
	return nil
}

func (f *fakeBookings) FindByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.items {
		if b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookings) List(_ context.Context, q models.PageQuery) ([]models.Booking, int64, error) {
	items := f.all()
	return items, int64(len(items)), nil
}

func (f *fakeBookings) ListByCreator(_ context.Context, creator primitive.ObjectID) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range f.all() {
		if b.CreatedBy == creator {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListByDoctor(_ context.Context, doctor primitive.ObjectID) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range f.all() {
		if b.DoctorID != nil && *b.DoctorID == doctor {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) CreatorsByReferral(_ context.Context, code string) ([]primitive.ObjectID, error) {
	seen := map[primitive.ObjectID]bool{}
	out := []primitive.ObjectID{}
	for _, b := range f.all() {
		if b.UsedReferral != nil && *b.UsedReferral == code && !seen[b.CreatedBy] {
			seen[b.CreatedBy] = true
			out = append(out, b.CreatedBy)
		}
	}
	return out, nil
}

// idSet answers Exists from a fixed set of ids.
type idSet map[primitive.ObjectID]bool

func (s idSet) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	return s[id], nil
}

// fixture wires a registry over three fresh in-memory collections.
type fixture struct {
	customers  *fakeMembers
	doctors    *fakeDoctors
	affiliates *fakeMembers
	registry   *Registry
}

func newFixture() *fixture {
	f := &fixture{
		customers:  newFakeMembers(models.Customer),
		doctors:    newFakeDoctors(),
		affiliates: newFakeMembers(models.Affiliate),
	}
	f.registry = NewRegistry(f.customers, f.doctors, f.affiliates)
	return f
}

// codes returns a generator yielding the given codes in order, then the last one forever.
func codes(seq ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := seq[min(i, len(seq)-1)]
		i++
		return c, nil
	}
}
