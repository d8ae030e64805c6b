package routes

import (
	"pcstore/controllers"
	"pcstore/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Components *controllers.ComponentController
	Lookups    *controllers.LookupController
	Builds     *controllers.BuildController
	Carts      *controllers.CartController
	Orders     *controllers.OrderController
	AdminOrder *controllers.AdminOrderController
}

// Register mounts all routes. Storefront reads are public; everything
// that touches a user's data requires the identity headers, and the
// admin group additionally requires the admin role.
func Register(r *gin.Engine, c Controllers) {
	// Public catalog
	catalog := r.Group("/components")
	catalog.GET("/", c.Components.GetComponents(true))
	catalog.GET("/:id", c.Components.GetComponentByID)

	lookups := r.Group("/lookups")
	lookups.GET("/sockets", c.Lookups.GetSockets)
	lookups.GET("/ram-types", c.Lookups.GetRamTypes)
	lookups.GET("/form-factors", c.Lookups.GetFormFactors)
	lookups.GET("/storage-interfaces", c.Lookups.GetStorageInterfaces)

	// Builds
	builds := r.Group("/builds")
	builds.Use(middleware.AuthMiddleware())
	builds.POST("/", c.Builds.CreateBuild)
	builds.GET("/", c.Builds.GetBuilds)
	builds.GET("/:id", c.Builds.GetBuildByID)
	builds.PUT("/:id", c.Builds.UpdateBuild)
	builds.DELETE("/:id", c.Builds.DeleteBuild)
	builds.GET("/:id/compatibility", c.Builds.CheckCompatibility)

	// Cart
	cart := r.Group("/cart")
	cart.Use(middleware.AuthMiddleware())
	cart.GET("/", c.Carts.GetCart)
	cart.POST("/items", c.Carts.AddItem)
	cart.PUT("/items/:itemId", c.Carts.UpdateItem)
	cart.DELETE("/items/:itemId", c.Carts.RemoveItem)
	cart.DELETE("/", c.Carts.ClearCart)
	cart.POST("/checkout", c.Carts.Checkout)

	// Orders
	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	orders.POST("/", c.Orders.CreateOrder)
	orders.GET("/", c.Orders.GetOrders)
	orders.GET("/:id", c.Orders.GetOrderByID)
	orders.POST("/:id/capture", c.Orders.CapturePayment)
	orders.POST("/:id/retry-payment", c.Orders.RetryPayment)
	orders.POST("/:id/slip", c.Orders.SubmitSlip)
	orders.POST("/:id/cancel", c.Orders.CancelOrder)
	orders.POST("/:id/refund-request", c.Orders.RequestRefund)

	// Admin
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
	admin.GET("/dashboard", c.AdminOrder.GetDashboard)

	admin.GET("/orders", c.AdminOrder.GetAllOrders)
	admin.GET("/orders/:id", c.AdminOrder.GetOrder)
	admin.POST("/orders/:id/approve-slip", c.AdminOrder.ApproveSlip)
	admin.POST("/orders/:id/reject-slip", c.AdminOrder.RejectSlip)
	admin.POST("/orders/:id/revert-approval", c.AdminOrder.RevertApproval)
	admin.POST("/orders/:id/approve-refund", c.AdminOrder.ApproveRefund)
	admin.POST("/orders/:id/reject-refund", c.AdminOrder.RejectRefund)
	admin.POST("/orders/:id/force-refund", c.AdminOrder.ForceRefund)
	admin.POST("/orders/:id/ship", c.AdminOrder.ShipOrder)
	admin.PUT("/orders/:id/shipping", c.AdminOrder.UpdateShipping)
	admin.PUT("/orders/:id/status", c.AdminOrder.OverrideStatus)

	admin.GET("/components", c.Components.GetComponents(false))
	admin.POST("/components", c.Components.CreateComponent)
	admin.PUT("/components/:id", c.Components.UpdateComponent)
	admin.DELETE("/components/:id", c.Components.DeleteComponent)
	admin.PATCH("/components/:id/active", c.Components.SetActive)
	admin.POST("/components/:id/image", c.Components.UploadImage)
	admin.POST("/components/:id/stock", c.Components.AdjustStock)
	admin.PUT("/components/:id/price", c.Components.SetPrice)

	admin.POST("/lookups/sockets", c.Lookups.CreateSocket)
	admin.DELETE("/lookups/sockets/:id", c.Lookups.DeleteSocket)
	admin.POST("/lookups/ram-types", c.Lookups.CreateRamType)
	admin.DELETE("/lookups/ram-types/:id", c.Lookups.DeleteRamType)
	admin.POST("/lookups/form-factors", c.Lookups.CreateFormFactor)
	admin.DELETE("/lookups/form-factors/:id", c.Lookups.DeleteFormFactor)
	admin.POST("/lookups/storage-interfaces", c.Lookups.CreateStorageInterface)
	admin.DELETE("/lookups/storage-interfaces/:id", c.Lookups.DeleteStorageInterface)
}
