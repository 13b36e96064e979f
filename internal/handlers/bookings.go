package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/healthref-api/internal/models"
)

type bookingRequest struct {
	Name               string `json:"name"`
	CityID             string `json:"cityId"`
	Relation           string `json:"relation"`
	Age                int    `json:"age"`
	TreatmentCondition string `json:"treatmentCondition"`
	DoctorID           string `json:"doctorId" binding:"omitempty,objectid"`
	Date               string `json:"date"`
	Gender             string `json:"gender"`
	UsedReferral       string `json:"usedReferral"`
}

func (h *Handler) createBooking(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), id, models.BookingInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Appointment booked successfully", "booking": b})
}

func (h *Handler) ownBookings(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	items, err := h.Bookings.ListOwn(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": len(items), "bookApps": items})
}

func (h *Handler) listBookings(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	page, err := h.Bookings.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": page})
}

func (h *Handler) getBooking(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookApp": b})
}
