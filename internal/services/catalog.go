package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogStore is a CRUD collection of reference documents.
type CatalogStore[T any] interface {
	Insert(ctx context.Context, doc *T) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	All(ctx context.Context) ([]T, error)
	List(ctx context.Context, q models.PageQuery) ([]T, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Stampable is a pointer to a catalog document that can assign its own
// id and timestamps.
type Stampable[T any] interface {
	*T
	Stamp(now time.Time)
}

// CatalogService exposes admin CRUD and public reads over one catalog.
type CatalogService[T any, P Stampable[T]] struct {
	store CatalogStore[T]
	label string
	// check validates references in a document or update before it is written.
	check func(ctx context.Context, fields bson.M) error
	now   func() time.Time
}

func NewCatalogService[T any, P Stampable[T]](store CatalogStore[T], label string) *CatalogService[T, P] {
	return &CatalogService[T, P]{
		store: store,
		label: label,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithCheck installs a reference check run on the fields of every create
// and update.
func (s *CatalogService[T, P]) WithCheck(check func(ctx context.Context, fields bson.M) error) *CatalogService[T, P] {
	s.check = check
	return s
}

func (s *CatalogService[T, P]) Label() string { return s.label }

// Create stores doc. refs carries the reference fields to check.
func (s *CatalogService[T, P]) Create(ctx context.Context, doc *T, refs bson.M) error {
	if s.check != nil {
		if err := s.check(ctx, refs); err != nil {
			return err
		}
	}
	P(doc).Stamp(s.now())
	if err := s.store.Insert(ctx, doc); err != nil {
		return fmt.Errorf("create %s: %w", s.label, err)
	}
	return nil
}

func (s *CatalogService[T, P]) Get(ctx context.Context, hex string) (*T, error) {
	id, err := parseID(hex, s.label)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("%s not found", s.label)
	}
	return doc, err
}

func (s *CatalogService[T, P]) All(ctx context.Context) ([]T, error) {
	return s.store.All(ctx)
}

func (s *CatalogService[T, P]) List(ctx context.Context, q models.PageQuery) (models.Page[T], error) {
	q = q.Normalize()
	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return models.Page[T]{}, err
	}
	return models.NewPage(items, total, q), nil
}

// Update applies the given field values. An empty set is rejected.
func (s *CatalogService[T, P]) Update(ctx context.Context, hex string, set bson.M) (*T, error) {
	id, err := parseID(hex, s.label)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, validation("Nothing to update")
	}
	if s.check != nil {
		if err := s.check(ctx, set); err != nil {
			return nil, err
		}
	}
	doc, err := s.store.Update(ctx, id, set)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("%s not found", s.label)
	}
	return doc, err
}

func (s *CatalogService[T, P]) Delete(ctx context.Context, hex string) error {
	id, err := parseID(hex, s.label)
	if err != nil {
		return err
	}
	err = s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("%s not found", s.label)
	}
	return err
}

// RefCheck returns a check asserting that the ObjectID stored under field,
// when present, names an existing document in store.
func RefCheck(field, label string, store Existence) func(ctx context.Context, fields bson.M) error {
	return func(ctx context.Context, fields bson.M) error {
		raw, ok := fields[field]
		if !ok {
			return nil
		}
		var ids []primitive.ObjectID
		switch v := raw.(type) {
		case primitive.ObjectID:
			ids = []primitive.ObjectID{v}
		case []primitive.ObjectID:
			ids = v
		default:
			return validation("Invalid %s ID", label)
		}
		for _, id := range ids {
			ok, err := store.Exists(ctx, id)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", label, err)
			}
			if !ok {
				return notFound("%s ID not found", titleCase(label))
			}
		}
		return nil
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
