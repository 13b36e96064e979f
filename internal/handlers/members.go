package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/services"
)

type registerRequest struct {
	FullName string `json:"fullName" form:"fullName"`
	Phone    string `json:"phone" form:"phone"`
	Email    string `json:"email" form:"email" binding:"omitempty,email"`
	City     string `json:"city" form:"city"`
}

type otpRequest struct {
	Phone string `json:"phone" form:"phone"`
	OTP   string `json:"otp" form:"otp" binding:"omitempty,sixdigits"`
}

type memberUpdateRequest struct {
	FullName *string `json:"fullName" form:"fullName"`
	Phone    *string `json:"phone" form:"phone"`
	Email    *string `json:"email" form:"email" binding:"omitempty,email"`
	City     *string `json:"city" form:"city" binding:"omitempty,objectid"`
}

func (r memberUpdateRequest) input() services.MemberUpdateInput {
	return services.MemberUpdateInput{FullName: r.FullName, Phone: r.Phone, Email: r.Email, CityID: r.City}
}

// memberHandler serves one account variant: users or partners.
type memberHandler struct {
	h   *Handler
	api MemberAPI
}

func (m memberHandler) label() string {
	if m.api.Variant() == models.Affiliate {
		return "Partner"
	}
	return "User"
}

func (m memberHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	member, err := m.api.Register(c.Request.Context(), services.RegisterInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		CityID:   req.City,
	})
	if err != nil {
		m.h.respondErrorCode(c, err, "SERVER_ERROR")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": m.label() + " registered successfully", "data": member})
}

func (m memberHandler) sendOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := m.api.SendOTP(c.Request.Context(), req.Phone); err != nil {
		m.h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP generated successfully"})
}

func (m memberHandler) verifyOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, member, err := m.api.VerifyOTP(c.Request.Context(), req.Phone, req.OTP)
	if err != nil {
		m.h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token, "data": member})
}

func (m memberHandler) profile(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	p, err := m.api.Profile(c.Request.Context(), id)
	if err != nil {
		m.h.respondError(c, err)
		return
	}
	fetched(c, p)
}

func (m memberHandler) updateProfile(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req memberUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	member, err := m.api.UpdateSelf(c.Request.Context(), id, c.Param("id"), req.input())
	if err != nil {
		m.h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": m.label() + " updated successfully", "data": member})
}

func (m memberHandler) referredUsers(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	users, err := m.api.ReferredUsers(c.Request.Context(), id)
	if err != nil {
		m.h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetched Successfully", "total": len(users), "data": users})
}

// Admin endpoints.

func (m memberHandler) list(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	page, err := m.api.List(c.Request.Context(), q)
	if err != nil {
		m.h.respondError(c, err)
		return
	}
	fetched(c, page)
}

func (m memberHandler) get(c *gin.Context) {
	member, err := m.api.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		m.h.respondError(c, err)
		return
	}
	fetched(c, member)
}

func (m memberHandler) update(c *gin.Context) {
	var req memberUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	member, err := m.api.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		m.h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": m.label() + " updated successfully", "data": member})
}

func (m memberHandler) delete(c *gin.Context) {
	if err := m.api.Delete(c.Request.Context(), c.Param("id")); err != nil {
		m.h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": m.label() + " deleted successfully"})
}
