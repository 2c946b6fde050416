package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ErlanBelekov/campus-marketplace/internal/transport/http/handler"
	"github.com/ErlanBelekov/campus-marketplace/internal/transport/http/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Users   *handler.UserHandler
	Product *handler.ProductHandler
	Orders  *handler.OrderHandler
	Health  *handler.HealthHandler
}

func NewRouter(logger *slog.Logger, h Handlers, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = handler.MaxImageBytes
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/healthz", h.Health.Live)
	r.GET("/readyz", h.Health.Ready)

	authMW := middleware.Auth(jwtKey)

	auth := r.Group("/api/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/signup/initiate", h.Auth.InitiateSignup)
	auth.POST("/signup/verify-otp", h.Auth.VerifyOTP)
	auth.POST("/signup/complete", h.Auth.CompleteSignup)

	users := r.Group("/api/users")
	users.GET("/:id", h.Users.Get)
	users.GET("/:id/profile-image", h.Users.ProfileImage)
	users.PUT("/:id", authMW, h.Users.Update)
	users.DELETE("/:id", authMW, h.Users.Delete)

	products := r.Group("/api/products")
	products.GET("", h.Product.List)
	products.GET("/:id", h.Product.Get)
	products.GET("/:id/image", h.Product.Image)
	products.GET("/seller/:sellerId", h.Product.ListBySeller)
	products.POST("", authMW, h.Product.Create)
	products.PUT("/:id", authMW, h.Product.Update)
	products.DELETE("/:id", authMW, h.Product.Delete)

	orders := r.Group("/api/orders", authMW)
	orders.POST("", h.Orders.Place)
	orders.GET("", h.Orders.List)

	return r
}
