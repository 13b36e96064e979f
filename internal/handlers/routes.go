package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/healthref-api/internal/middleware"
	"github.com/harentsoaR/healthref-api/internal/models"
)

// SetupRouter wires middleware and every route of the API.
func (h *Handler) SetupRouter() (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(h.logger))
	r.Use(cors.New(h.corsConfig()))
	if h.RateLimiter != nil {
		r.Use(h.RateLimiter.Middleware())
	}
	if h.UploadDir != "" {
		r.Static("/uploads", h.UploadDir)
	}

	cities := newCatalogHandler(h, h.Cities, h.decodeCity, false)
	treatments := newCatalogHandler(h, h.Treatments, h.decodeTreatment, true)
	conditions := newCatalogHandler(h, h.Conditions, h.decodeCondition, true)
	hospitals := newCatalogHandler(h, h.Hospitals, h.decodeHospital, true)
	banners := newCatalogHandler(h, h.Banners, h.decodeBanner, true)

	auth := middleware.AuthMiddleware(h.Tokens)
	api := r.Group("/api")

	// Directory reads shared by users and partners.
	directory := func(g *gin.RouterGroup) {
		g.GET("/getall-treatments", treatments.list)
		g.GET("/getbyid-treatments/:id", treatments.get)
		g.GET("/getall-conditions", conditions.list)
		g.GET("/getbyid-conditions/:id", conditions.get)
		g.GET("/getall-hospital", hospitals.list)
		g.GET("/getbyid-hospital/:id", hospitals.get)
		g.GET("/hospitals-doctors/by-condition/:conditionId", h.hospitalsByCondition)
		g.GET("/getall-doctor", h.listDoctors)
		g.GET("/getbyid-doctor/:id", h.getDoctor)
		g.GET("/getall-banner", banners.list)
		g.GET("/getbyid-banner/:id", banners.get)
		g.GET("/search", h.search)
		g.POST("/add-whishlist-doctor/:doctorId", h.wishlist(true))
		g.POST("/remove-whishlist-doctor/:doctorId", h.wishlist(false))
		g.POST("/add-account-details", h.addAccountDetails)
	}

	users := memberHandler{h: h, api: h.Users}
	user := api.Group("/user")
	{
		user.POST("/register", users.register)
		user.POST("/send-otp", users.sendOTP)
		user.POST("/verify-otp", users.verifyOTP)
		user.GET("/getall-city", cities.list)

		private := user.Group("", auth, middleware.RequireRole(models.RoleUser))
		private.GET("/get-profile", users.profile)
		private.PUT("/update-profile/:id", users.updateProfile)
		private.POST("/book-app", h.createBooking)
		private.GET("/getown-book-app", h.ownBookings)
		directory(private)
	}

	partners := memberHandler{h: h, api: h.Partners}
	partner := api.Group("/partner")
	{
		partner.POST("/register", partners.register)
		partner.POST("/send-otp", partners.sendOTP)
		partner.POST("/verify-otp", partners.verifyOTP)
		partner.GET("/getall-city", cities.list)

		private := partner.Group("", auth, middleware.RequireRole(models.RolePartner))
		private.GET("/get-profile", partners.profile)
		private.PUT("/update-profile/:id", partners.updateProfile)
		private.GET("/referred-users", partners.referredUsers)
		directory(private)
	}

	doctor := api.Group("/doctor")
	{
		doctor.POST("/register", h.createDoctor)
		doctor.POST("/login", h.loginDoctor)

		private := doctor.Group("", auth, middleware.RequireRole(models.RoleDoctor))
		private.GET("/getown-profile", h.doctorProfile)
		private.GET("/getown-appointments", h.doctorAppointments)
		private.POST("/add-account-details", h.addAccountDetails)
	}

	admin := api.Group("/admin", auth, middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/add-user", users.register)
		admin.PUT("/update-user/:id", users.update)
		admin.GET("/getall-user", users.list)
		admin.GET("/getbyid-user/:id", users.get)
		admin.DELETE("/delete-user/:id", users.delete)

		admin.POST("/add-partner", partners.register)
		admin.PUT("/update-partner/:id", partners.update)
		admin.GET("/getall-partner", partners.list)
		admin.GET("/getbyid-partner/:id", partners.get)
		admin.DELETE("/delete-partner/:id", partners.delete)

		admin.POST("/add-doctor", h.createDoctor)
		admin.GET("/getall-doctor", h.listDoctors)
		admin.GET("/getbyid-doctor/:id", h.getDoctor)
		admin.PUT("/update-doctor/:id", h.updateDoctor)
		admin.DELETE("/delete-doctor/:id", h.deleteDoctor)

		crud := func(name string, ch interface {
			create(*gin.Context)
			list(*gin.Context)
			get(*gin.Context)
			update(*gin.Context)
			delete(*gin.Context)
		}) {
			admin.POST("/add-"+name, ch.create)
			admin.GET("/getall-"+name, ch.list)
			admin.GET("/getbyid-"+name+"/:id", ch.get)
			admin.PUT("/update-"+name+"/:id", ch.update)
			admin.DELETE("/delete-"+name+"/:id", ch.delete)
		}
		crud("city", cities)
		crud("treatments", treatments)
		crud("conditions", conditions)
		crud("hospital", hospitals)
		crud("banner", banners)

		admin.GET("/getall-book-app", h.listBookings)
		admin.GET("/getbyid-book-app/:id", h.getBooking)
		admin.GET("/getall-accountDetails", h.listAccountDetails)

		admin.POST("/add-comission", h.addCommission)
		admin.PUT("/update-comission", h.updateCommission)
		admin.POST("/commission/increment", h.addCommission)
		admin.PUT("/commission/set", h.updateCommission)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	return r, nil
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(h.CORSOrigins) == 0 || (len(h.CORSOrigins) == 1 && h.CORSOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = h.CORSOrigins
	cfg.AllowCredentials = true
	return cfg
}
