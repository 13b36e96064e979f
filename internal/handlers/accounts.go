package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/healthref-api/internal/middleware"
	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/services"
)

type commissionRequest struct {
	ID         string   `json:"id"`
	Role       string   `json:"role"`
	Commission *float64 `json:"commission"`
}

func (r commissionRequest) input() services.CommissionInput {
	return services.CommissionInput{ID: r.ID, Role: r.Role, Amount: r.Commission}
}

func (h *Handler) addCommission(c *gin.Context) {
	var req commissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.Commission.Increment(c.Request.Context(), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Commission added successfully", "data": view})
}

func (h *Handler) updateCommission(c *gin.Context) {
	var req commissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.Commission.Set(c.Request.Context(), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Commission updated successfully", "data": view})
}

type accountDetailsRequest struct {
	BankName      string `json:"bankName" form:"bankName"`
	AccountNumber string `json:"accountNumber" form:"accountNumber"`
	IFSCCode      string `json:"ifscCode" form:"ifscCode"`
	UPI           string `json:"upi" form:"upi"`
}

// addAccountDetails files payout details against the caller's own account.
func (h *Handler) addAccountDetails(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	variant, ok := models.ParseVariant(middleware.UserRole(c))
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
		return
	}
	var req accountDetailsRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.AccountDetails.Add(c.Request.Context(), id, variant, services.AccountDetailsInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account details added successfully", "data": d})
}

func (h *Handler) listAccountDetails(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}
	page, err := h.AccountDetails.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	fetched(c, page)
}

func (h *Handler) search(c *gin.Context) {
	res, err := h.Search.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "doctors": res.Doctors, "hospitals": res.Hospitals, "conditions": res.Conditions})
}

func (h *Handler) hospitalsByCondition(c *gin.Context) {
	res, err := h.Search.ByCondition(c.Request.Context(), c.Param("conditionId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hospitals": res.Hospitals, "doctors": res.Doctors})
}
