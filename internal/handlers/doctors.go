package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/healthref-api/internal/services"
)

type doctorRequest struct {
	DoctorName     string    `json:"doctorName" form:"doctorName"`
	Email          string    `json:"email" form:"email" binding:"omitempty,email"`
	Password       string    `json:"password" form:"password"`
	Specialization string    `json:"specialization" form:"specialization"`
	About          string    `json:"about" form:"about"`
	Address        string    `json:"address" form:"address"`
	Experience     string    `json:"experience" form:"experience"`
	Clients        string    `json:"clients" form:"clients"`
	Hospitals      listParam `json:"hospitals" form:"hospitals"`
}

type doctorUpdateRequest struct {
	DoctorName     *string   `json:"doctorName" form:"doctorName"`
	Specialization *string   `json:"specialization" form:"specialization"`
	About          *string   `json:"about" form:"about"`
	Address        *string   `json:"address" form:"address"`
	Experience     *string   `json:"experience" form:"experience"`
	Hospitals      listParam `json:"hospitals" form:"hospitals"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// createDoctor serves both self registration and the admin add-doctor
// route. Images arrive as "image" or "images" files.
func (h *Handler) createDoctor(c *gin.Context) {
	var req doctorRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	images, err := h.uploadFiles(c, "image", "images")
	if err != nil {
		h.respondError(c, err)
		return
	}
	d, err := h.Doctors.Register(c.Request.Context(), services.DoctorInput{
		DoctorName:     req.DoctorName,
		Email:          req.Email,
		Password:       req.Password,
		Specialization: req.Specialization,
		About:          req.About,
		Address:        req.Address,
		Experience:     req.Experience,
		Clients:        req.Clients,
		HospitalIDs:    req.Hospitals.Values,
		Images:         images,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Doctor added successfully", "data": d})
}

func (h *Handler) loginDoctor(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, d, err := h.Doctors.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token, "data": d})
}

func (h *Handler) doctorProfile(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	p, err := h.Doctors.Profile(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	fetched(c, p)
}

func (h *Handler) doctorAppointments(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	items, err := h.Bookings.ListForDoctor(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": len(items), "appointments": items})
}

func (h *Handler) listDoctors(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	page, err := h.Doctors.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	fetched(c, page)
}

func (h *Handler) getDoctor(c *gin.Context) {
	d, err := h.Doctors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	fetched(c, d)
}

func (h *Handler) updateDoctor(c *gin.Context) {
	var req doctorUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	images, err := h.uploadFiles(c, "image", "images")
	if err != nil {
		h.respondError(c, err)
		return
	}
	in := services.DoctorUpdateInput{
		DoctorName:     req.DoctorName,
		Specialization: req.Specialization,
		About:          req.About,
		Address:        req.Address,
		Experience:     req.Experience,
		Images:         images,
	}
	if req.Hospitals.Set {
		in.HospitalIDs = req.Hospitals.Values
	}
	d, err := h.Doctors.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor updated successfully", "data": d})
}

func (h *Handler) deleteDoctor(c *gin.Context) {
	if err := h.Doctors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor deleted successfully"})
}

func (h *Handler) wishlist(on bool) gin.HandlerFunc {
	msg := "Removed from Wishlist"
	if on {
		msg = "Added to Wishlist"
	}
	return func(c *gin.Context) {
		d, err := h.Doctors.Wishlist(c.Request.Context(), c.Param("doctorId"), on)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": msg, "data": d})
	}
}
