package api

import "github.com/gin-gonic/gin"

// NewRouter every /api route sits behind the password gate
func NewRouter(h *Handler, password string) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", h.Health)

	api := r.Group("/api", PasswordGate(password), Session())
	{
		api.POST("/search", h.Search)
		api.GET("/search/last", h.LastSearch)
		api.GET("/search/export", h.ExportSearch)
		api.DELETE("/session", h.ClearSession)

		api.GET("/deals", h.Deals)
		api.GET("/deals/export", h.ExportDeals)

		api.POST("/advice", h.Advice)

		api.POST("/alerts", h.CreateAlert)
		api.POST("/alerts/import", h.ImportAlerts)
		api.GET("/alerts", h.ListAlerts)
		api.GET("/alerts/:id", h.GetAlert)
		api.DELETE("/alerts/:id", h.StopAlert)
	}

	return r
}
