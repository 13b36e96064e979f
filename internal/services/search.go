package services

import (
	"context"
	"strings"

	"github.com/harentsoaR/healthref-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const searchLimit = 20

type searcher[T any] interface {
	Search(ctx context.Context, term string, limit int64) ([]T, error)
}

type SearchResult struct {
	Doctors    []models.Doctor    `json:"doctors"`
	Hospitals  []models.Hospital  `json:"hospitals"`
	Conditions []models.Condition `json:"conditions"`
}

type HospitalsWithDoctors struct {
	Hospitals []models.Hospital `json:"hospitals"`
	Doctors   []models.Doctor   `json:"doctors"`
}

// hospitalFinder loads hospitals treating a condition.
type hospitalFinder interface {
	FindBy(ctx context.Context, field string, value any) ([]models.Hospital, error)
}

type doctorsByHospital interface {
	ListByHospitals(ctx context.Context, hospitalIDs []primitive.ObjectID) ([]models.Doctor, error)
}

// SearchService answers the public directory queries.
type SearchService struct {
	doctors    searcher[models.Doctor]
	hospitals  searcher[models.Hospital]
	conditions searcher[models.Condition]
	byCond     hospitalFinder
	byHospital doctorsByHospital
	condExists Existence
}

func NewSearchService(
	doctors interface {
		searcher[models.Doctor]
		doctorsByHospital
	},
	hospitals interface {
		searcher[models.Hospital]
		hospitalFinder
	},
	conditions interface {
		searcher[models.Condition]
		Existence
	},
) *SearchService {
	return &SearchService{
		doctors:    doctors,
		hospitals:  hospitals,
		conditions: conditions,
		byCond:     hospitals,
		byHospital: doctors,
		condExists: conditions,
	}
}

// Search runs a case-insensitive substring match across doctors,
// hospitals and conditions concurrently.
func (s *SearchService) Search(ctx context.Context, term string) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, validation("Search query is required")
	}

	res := &SearchResult{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.Doctors, err = s.doctors.Search(ctx, term, searchLimit)
		return err
	})
	g.Go(func() (err error) {
		res.Hospitals, err = s.hospitals.Search(ctx, term, searchLimit)
		return err
	})
	g.Go(func() (err error) {
		res.Conditions, err = s.conditions.Search(ctx, term, searchLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// ByCondition returns the hospitals treating a condition and the doctors
// attached to them.
func (s *SearchService) ByCondition(ctx context.Context, conditionHex string) (*HospitalsWithDoctors, error) {
	id, err := parseID(conditionHex, "condition")
	if err != nil {
		return nil, err
	}
	ok, err := s.condExists.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("Condition not found")
	}

	hospitals, err := s.byCond.FindBy(ctx, "conditions", id)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(hospitals))
	for i, h := range hospitals {
		ids[i] = h.ID
	}
	doctors, err := s.byHospital.ListByHospitals(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &HospitalsWithDoctors{Hospitals: hospitals, Doctors: doctors}, nil
}
