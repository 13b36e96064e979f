package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/healthref-api/internal/middleware"
	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/services"
	"github.com/harentsoaR/healthref-api/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MemberAPI is the phone/OTP account surface shared by users and partners.
type MemberAPI interface {
	Variant() models.Variant
	ExistsCode() string
	Register(ctx context.Context, in services.RegisterInput) (*models.Member, error)
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, otp string) (string, *models.Member, error)
	Profile(ctx context.Context, id primitive.ObjectID) (*models.MemberProfile, error)
	Get(ctx context.Context, hex string) (*models.Member, error)
	UpdateSelf(ctx context.Context, caller primitive.ObjectID, hex string, in services.MemberUpdateInput) (*models.Member, error)
	Update(ctx context.Context, hex string, in services.MemberUpdateInput) (*models.Member, error)
	Delete(ctx context.Context, hex string) error
	List(ctx context.Context, q models.PageQuery) (models.Page[models.Member], error)
	ReferredUsers(ctx context.Context, id primitive.ObjectID) ([]models.MemberSummary, error)
}

type DoctorAPI interface {
	Register(ctx context.Context, in services.DoctorInput) (*models.Doctor, error)
	Login(ctx context.Context, email, password string) (string, *models.Doctor, error)
	Profile(ctx context.Context, id primitive.ObjectID) (*models.DoctorProfile, error)
	Get(ctx context.Context, hex string) (*models.Doctor, error)
	List(ctx context.Context, q models.PageQuery) (models.Page[models.Doctor], error)
	Update(ctx context.Context, hex string, in services.DoctorUpdateInput) (*models.Doctor, error)
	Delete(ctx context.Context, hex string) error
	Wishlist(ctx context.Context, hex string, on bool) (*models.Doctor, error)
}

type BookingAPI interface {
	Create(ctx context.Context, creator primitive.ObjectID, in models.BookingInput) (*models.Booking, error)
	List(ctx context.Context, q models.PageQuery) (models.Page[models.BookingView], error)
	Get(ctx context.Context, hex string) (*models.BookingView, error)
	ListOwn(ctx context.Context, creator primitive.ObjectID) ([]models.BookingView, error)
	ListForDoctor(ctx context.Context, doctor primitive.ObjectID) ([]models.BookingView, error)
}

type CommissionAPI interface {
	Increment(ctx context.Context, in services.CommissionInput) (*models.CommissionView, error)
	Set(ctx context.Context, in services.CommissionInput) (*models.CommissionView, error)
}

type AccountDetailsAPI interface {
	Add(ctx context.Context, owner primitive.ObjectID, variant models.Variant, in services.AccountDetailsInput) (*models.AccountDetails, error)
	List(ctx context.Context, q models.PageQuery) (models.Page[services.AccountDetailsView], error)
}

type SearchAPI interface {
	Search(ctx context.Context, term string) (*services.SearchResult, error)
	ByCondition(ctx context.Context, conditionHex string) (*services.HospitalsWithDoctors, error)
}

// CatalogAPI is admin CRUD plus public reads over one reference collection.
type CatalogAPI[T any] interface {
	Label() string
	Create(ctx context.Context, doc *T, refs bson.M) error
	Get(ctx context.Context, hex string) (*T, error)
	All(ctx context.Context) ([]T, error)
	List(ctx context.Context, q models.PageQuery) (models.Page[T], error)
	Update(ctx context.Context, hex string, set bson.M) (*T, error)
	Delete(ctx context.Context, hex string) error
}

// Deps lists everything the HTTP layer talks to. RateLimiter is optional.
type Deps struct {
	Users          MemberAPI
	Partners       MemberAPI
	Doctors        DoctorAPI
	Bookings       BookingAPI
	Commission     CommissionAPI
	AccountDetails AccountDetailsAPI
	Search         SearchAPI

	Cities     CatalogAPI[models.City]
	Treatments CatalogAPI[models.Treatment]
	Conditions CatalogAPI[models.Condition]
	Hospitals  CatalogAPI[models.Hospital]
	Banners    CatalogAPI[models.Banner]

	Uploader    services.Uploader
	Tokens      *utils.TokenManager
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
	UploadDir   string
	Logger      *zap.Logger
}

type Handler struct {
	Deps
	logger *zap.Logger
}

func NewHandler(d Deps) *Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Deps: d, logger: log}
}

// respondError maps a service error onto the JSON error body.
func (h *Handler) respondError(c *gin.Context, err error) {
	h.respondErrorCode(c, err, "")
}

// respondErrorCode is respondError with an errorCode attached to
// internal failures.
func (h *Handler) respondErrorCode(c *gin.Context, err error, internalCode string) {
	status := statusOf(err)
	body := gin.H{}

	var se *services.Error
	if errors.As(err, &se) && status != http.StatusInternalServerError {
		body["message"] = se.Message
		if se.Code != "" {
			body["errorCode"] = se.Code
		}
		c.AbortWithStatusJSON(status, body)
		return
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		body["message"] = "Server error occurred. Please try again later."
		if internalCode != "" {
			body["errorCode"] = internalCode
		}
		c.AbortWithStatusJSON(status, body)
		return
	}

	body["message"] = err.Error()
	c.AbortWithStatusJSON(status, body)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
}

// caller returns the authenticated account id or aborts with 401.
func caller(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User ID not found in token"})
	}
	return id, ok
}

func pageQuery(c *gin.Context) (models.PageQuery, bool) {
	var q models.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid pagination parameters", "error": err.Error()})
		return q, false
	}
	return q, true
}

func fetched(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"message": "Fetched Successfully", "data": data})
}
