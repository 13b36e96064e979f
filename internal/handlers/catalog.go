package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// decodeFunc reads a catalog document from the request. It returns the
// full document for creates and the set of fields actually sent for
// updates.
type decodeFunc[T any] func(c *gin.Context, creating bool) (*T, bson.M, error)

// catalogHandler serves CRUD for one reference collection.
type catalogHandler[T any] struct {
	h      *Handler
	api    CatalogAPI[T]
	decode decodeFunc[T]
	paged  bool
}

func newCatalogHandler[T any](h *Handler, api CatalogAPI[T], decode decodeFunc[T], paged bool) catalogHandler[T] {
	return catalogHandler[T]{h: h, api: api, decode: decode, paged: paged}
}

func (ch catalogHandler[T]) create(c *gin.Context) {
	doc, refs, err := ch.decode(c, true)
	if err != nil {
		ch.h.respondError(c, err)
		return
	}
	if err := ch.api.Create(c.Request.Context(), doc, refs); err != nil {
		ch.h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": ch.api.Label() + " added successfully", "data": doc})
}

func (ch catalogHandler[T]) list(c *gin.Context) {
	if !ch.paged {
		items, err := ch.api.All(c.Request.Context())
		if err != nil {
			ch.h.respondError(c, err)
			return
		}
		fetched(c, items)
		return
	}
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	page, err := ch.api.List(c.Request.Context(), q)
	if err != nil {
		ch.h.respondError(c, err)
		return
	}
	fetched(c, page)
}

func (ch catalogHandler[T]) get(c *gin.Context) {
	doc, err := ch.api.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ch.h.respondError(c, err)
		return
	}
	fetched(c, doc)
}

func (ch catalogHandler[T]) update(c *gin.Context) {
	_, set, err := ch.decode(c, false)
	if err != nil {
		ch.h.respondError(c, err)
		return
	}
	doc, err := ch.api.Update(c.Request.Context(), c.Param("id"), set)
	if err != nil {
		ch.h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ch.api.Label() + " updated successfully", "data": doc})
}

func (ch catalogHandler[T]) delete(c *gin.Context) {
	if err := ch.api.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ch.h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ch.api.Label() + " deleted successfully"})
}

func invalid(msg string) error {
	return &services.Error{Kind: services.ErrValidation, Message: msg}
}

func bindError(err error) error {
	return invalid("Invalid request body: " + err.Error())
}

// text trims an optional string field and records it in set when sent.
func text(set bson.M, key string, v *string) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(*v)
	set[key] = s
	return s
}

type cityRequest struct {
	Name *string `json:"name" form:"name"`
}

func (h *Handler) decodeCity(c *gin.Context, creating bool) (*models.City, bson.M, error) {
	var req cityRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, nil, bindError(err)
	}
	set := bson.M{}
	doc := &models.City{Name: text(set, "name", req.Name)}
	if creating && doc.Name == "" {
		return nil, nil, invalid("City name is required")
	}
	return doc, set, nil
}

// Image fields bind from JSON only; multipart requests upload the file
// under the same name.
type treatmentRequest struct {
	Name              *string                          `json:"name" form:"name"`
	Overview          *string                          `json:"overview" form:"overview"`
	TreatmentDuration jsonParam[[]models.DurationRange] `json:"treatmentDuration" form:"treatmentDuration"`
	TreatmentCost     jsonParam[[]models.CostRange]     `json:"treatmentCost" form:"treatmentCost"`
	Image             *string                          `json:"image" form:"-"`
}

func (h *Handler) decodeTreatment(c *gin.Context, creating bool) (*models.Treatment, bson.M, error) {
	var req treatmentRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, nil, bindError(err)
	}
	set := bson.M{}
	doc := &models.Treatment{
		Name:              text(set, "name", req.Name),
		Overview:          text(set, "overview", req.Overview),
		Image:             text(set, "image", req.Image),
		TreatmentDuration: []models.DurationRange{},
		TreatmentCost:     []models.CostRange{},
	}
	if req.TreatmentDuration.Set && req.TreatmentDuration.Value != nil {
		doc.TreatmentDuration = req.TreatmentDuration.Value
		set["treatmentDuration"] = doc.TreatmentDuration
	}
	if req.TreatmentCost.Set && req.TreatmentCost.Value != nil {
		doc.TreatmentCost = req.TreatmentCost.Value
		set["treatmentCost"] = doc.TreatmentCost
	}
	if creating && doc.Name == "" {
		return nil, nil, invalid("Treatment name is required")
	}
	if err := h.attachImage(c, set, &doc.Image); err != nil {
		return nil, nil, err
	}
	return doc, set, nil
}

type conditionRequest struct {
	Name       *string   `json:"name" form:"name"`
	Overview   *string   `json:"overview" form:"overview"`
	Treatments listParam `json:"treatments" form:"treatments"`
	Image      *string   `json:"image" form:"-"`
}

func (h *Handler) decodeCondition(c *gin.Context, creating bool) (*models.Condition, bson.M, error) {
	var req conditionRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, nil, bindError(err)
	}
	set := bson.M{}
	doc := &models.Condition{
		Name:       text(set, "name", req.Name),
		Overview:   text(set, "overview", req.Overview),
		Image:      text(set, "image", req.Image),
		Treatments: []primitive.ObjectID{},
	}
	if req.Treatments.Set {
		ids, err := objectIDs(req.Treatments.Values, "treatment")
		if err != nil {
			return nil, nil, err
		}
		doc.Treatments = ids
		set["treatments"] = ids
	}
	if creating && doc.Name == "" {
		return nil, nil, invalid("Condition name is required")
	}
	if err := h.attachImage(c, set, &doc.Image); err != nil {
		return nil, nil, err
	}
	return doc, set, nil
}

type hospitalRequest struct {
	HospitalName           *string                       `json:"hospitalName" form:"hospitalName"`
	Address                *string                       `json:"address" form:"address"`
	Conditions             *string                       `json:"conditions" form:"conditions"`
	Overview               *string                       `json:"overview" form:"overview"`
	Timings                *string                       `json:"timings" form:"timings"`
	SpecialitiesTreatments jsonParam[[]models.Speciality] `json:"specialitiesTreatments" form:"specialitiesTreatments"`
}

func (h *Handler) decodeHospital(c *gin.Context, creating bool) (*models.Hospital, bson.M, error) {
	var req hospitalRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, nil, bindError(err)
	}
	set := bson.M{}
	doc := &models.Hospital{
		HospitalName:           text(set, "hospitalName", req.HospitalName),
		Address:                text(set, "address", req.Address),
		Overview:               text(set, "overview", req.Overview),
		Timings:                text(set, "timings", req.Timings),
		Images:                 []string{},
		SpecialitiesTreatments: []models.Speciality{},
	}
	if req.Conditions != nil {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(*req.Conditions))
		if err != nil {
			return nil, nil, invalid("Invalid conditions ID")
		}
		doc.Conditions = id
		set["conditions"] = id
	}
	if req.SpecialitiesTreatments.Set {
		if req.SpecialitiesTreatments.Value != nil {
			doc.SpecialitiesTreatments = req.SpecialitiesTreatments.Value
		}
		set["specialitiesTreatments"] = doc.SpecialitiesTreatments
	}
	if creating && (doc.HospitalName == "" || doc.Address == "" || doc.Conditions.IsZero()) {
		return nil, nil, invalid("hospitalName, address, and conditions are required")
	}

	images, err := h.uploadFiles(c, "images", "image")
	if err != nil {
		return nil, nil, err
	}
	if len(images) > 0 {
		doc.Images = images
		set["images"] = images
	}
	return doc, set, nil
}

type bannerRequest struct {
	Name  *string `json:"name" form:"name"`
	URL   *string `json:"url" form:"url"`
	Image *string `json:"image" form:"-"`
}

func (h *Handler) decodeBanner(c *gin.Context, creating bool) (*models.Banner, bson.M, error) {
	var req bannerRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, nil, bindError(err)
	}
	set := bson.M{}
	doc := &models.Banner{
		Name:  text(set, "name", req.Name),
		URL:   text(set, "url", req.URL),
		Image: text(set, "image", req.Image),
	}
	if creating && doc.Name == "" {
		return nil, nil, invalid("Banner name is required")
	}
	if err := h.attachImage(c, set, &doc.Image); err != nil {
		return nil, nil, err
	}
	return doc, set, nil
}

// attachImage uploads the "image" file, when one was posted, and points
// the document at it.
func (h *Handler) attachImage(c *gin.Context, set bson.M, dst *string) error {
	url, err := h.uploadFile(c, "image")
	if err != nil {
		return err
	}
	if url != "" {
		*dst = url
		set["image"] = url
	}
	return nil
}

func objectIDs(hexes []string, label string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, hex := range hexes {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, invalid("Invalid " + label + " ID")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
