// Package repository holds the MongoDB access code for accounts, catalog
// documents and bookings.
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/harentsoaR/healthref-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no document matches the filter.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert or update violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrReferralCodeTaken is the ErrDuplicate raised by the referralCode index.
	ErrReferralCodeTaken = fmt.Errorf("%w: referral code already taken", ErrDuplicate)
)

// Collection names.
const (
	CitiesCollection         = "cities"
	TreatmentsCollection     = "treatments"
	ConditionsCollection     = "conditions"
	HospitalsCollection      = "hospitals"
	BannersCollection        = "banners"
	BookingsCollection       = "bookapps"
	AccountDetailsCollection = "accountdetails"
)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique and lookup indexes the services rely on.
// Referral codes are unique per account collection, not across them.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_unique"),
		}
	}
	plain := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
	}

	indexes := map[string][]mongo.IndexModel{
		models.Customer.Collection():     {unique("referralCode"), unique("phone"), unique("email")},
		models.Affiliate.Collection():    {unique("referralCode"), unique("phone"), unique("email")},
		models.Practitioner.Collection(): {unique("referralCode"), unique("email")},
		BookingsCollection:               {plain("createdBy"), plain("doctorId"), plain("usedReferral")},
		HospitalsCollection:              {plain("conditions")},
		AccountDetailsCollection:         {plain("createdBy")},
	}

	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// classify translates driver errors into the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "referralCode") {
			return ErrReferralCodeTaken
		}
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// containsFilter builds a case-insensitive substring match over fields.
func containsFilter(term string, fields ...string) bson.M {
	term = strings.TrimSpace(term)
	if term == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

func pageOptions(q models.PageQuery) *options.FindOptions {
	return options.Find().
		SetSkip(q.Skip()).
		SetLimit(q.Limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// findPage runs filter with paging and returns the decoded page and the total.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, q models.PageQuery) ([]T, int64, error) {
	q = q.Normalize()
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", coll.Name(), err)
	}
	items, err := findAll[T](ctx, coll, filter, pageOptions(q))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return items, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, classify(err)
	}
	return &doc, nil
}

func findOneAndSet[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, set bson.M) (*T, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, classify(err)
	}
	return &doc, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
