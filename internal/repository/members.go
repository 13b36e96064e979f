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

// MemberRepository stores customers or affiliates, depending on the variant
// it was built for.
type MemberRepository struct {
	accounts
}

func NewMemberRepository(db *mongo.Database, variant models.Variant) *MemberRepository {
	return &MemberRepository{accounts{coll: db.Collection(variant.Collection()), variant: variant}}
}

// Create inserts m. A clash on referralCode yields ErrReferralCodeTaken,
// any other unique clash ErrDuplicate.
func (r *MemberRepository) Create(ctx context.Context, m *models.Member) error {
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return classify(err)
	}
	return nil
}

// ExistsByContact reports whether an account with this email or phone exists.
func (r *MemberRepository) ExistsByContact(ctx context.Context, email, phone string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"phone": phone},
	}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count members: %w", err)
	}
	return n > 0, nil
}

func (r *MemberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	return findOne[models.Member](ctx, r.coll, bson.M{"_id": id})
}

func (r *MemberRepository) FindByPhone(ctx context.Context, phone string) (*models.Member, error) {
	return findOne[models.Member](ctx, r.coll, bson.M{"phone": phone})
}

// SetOTP stores a one-time password and its expiry on the member.
func (r *MemberRepository) SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expires time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"otp":        otp,
		"otpExpires": expires,
		"updatedAt":  time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeOTP clears the OTP if it matches and has not expired. It returns
// ErrNotFound when no member holds that unexpired code.
func (r *MemberRepository) ConsumeOTP(ctx context.Context, phone, otp string, now time.Time) (*models.Member, error) {
	filter := bson.M{
		"phone":      phone,
		"otp":        otp,
		"otpExpires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$unset": bson.M{"otp": "", "otpExpires": ""},
		"$set":   bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m models.Member
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m); err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func (r *MemberRepository) Update(ctx context.Context, id primitive.ObjectID, u models.MemberUpdate) (*models.Member, error) {
	set := bson.M{}
	if u.FullName != nil {
		set["fullName"] = *u.FullName
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.City != nil {
		set["city"] = *u.City
	}
	return findOneAndSet[models.Member](ctx, r.coll, id, set)
}

func (r *MemberRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *MemberRepository) List(ctx context.Context, q models.PageQuery) ([]models.Member, int64, error) {
	return findPage[models.Member](ctx, r.coll, containsFilter(q.Search, "fullName", "email", "phone"), q)
}

// Summaries returns the public summary of every member in ids.
func (r *MemberRepository) Summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.MemberSummary, error) {
	if len(ids) == 0 {
		return []models.MemberSummary{}, nil
	}
	opts := options.Find().SetProjection(bson.M{
		"fullName": 1, "phone": 1, "email": 1, "city": 1, "role": 1, "createdAt": 1,
	})
	return findAll[models.MemberSummary](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}}, opts)
}
