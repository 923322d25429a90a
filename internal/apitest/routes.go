package apitest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-client/internal/api"
	"library-client/internal/models"
	"library-client/internal/shared/middleware"
)

// ScopeSuperuser grants writes to Libraries and access to Users.
const ScopeSuperuser = "superuser"

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		s.countRequests(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := middleware.AuthMiddleware(s.tokens, s.db)

	oauth := router.Group("/oauth")
	{
		h := NewOAuthHandler(s.db, s.tokens)
		oauth.POST("/token", h.Token)
		oauth.DELETE("/token", authed, h.Revoke)
		oauth.GET("/me", authed, h.Me)
	}

	v := router.Group("/api", authed)
	{
		s.setupLibraryRoutes(v)
		s.setupUserRoutes(v)
		for _, m := range []models.Model{models.ModelAuthor, models.ModelSeries, models.ModelStory, models.ModelVolume} {
			s.setupOwnedRoutes(v, m)
		}
	}

	return router
}

// ========================================
// LIBRARY ROUTES
// ========================================
func (s *Server) setupLibraryRoutes(v *gin.RouterGroup) {
	h := NewHandler(s.db, models.ModelLibrary)
	admin := middleware.RequireScope(ScopeSuperuser)

	libraries := v.Group("/libraries")
	{
		libraries.GET("", h.List)
		libraries.POST("", admin, h.Insert)
		libraries.GET("/exact/:name", h.Exact)
		libraries.GET("/:id", h.Get)
		libraries.PUT("/:id", admin, h.Update)
		libraries.DELETE("/:id", admin, h.Delete)
	}
}

// ========================================
// USER ROUTES
// ========================================
func (s *Server) setupUserRoutes(v *gin.RouterGroup) {
	h := NewHandler(s.db, models.ModelUser)

	users := v.Group("/users", middleware.RequireScope(ScopeSuperuser))
	{
		users.GET("", h.List)
		users.POST("", h.Insert)
		users.GET("/exact/:username", h.Exact)
		users.GET("/:id", h.Get)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}

// ========================================
// LIBRARY OWNED ROUTES
// ========================================
func (s *Server) setupOwnedRoutes(v *gin.RouterGroup, model models.Model) {
	seg, err := api.Segment(model)
	if err != nil {
		panic(err)
	}
	h := NewHandler(s.db, model)

	g := v.Group("/" + seg + "/:libraryId")
	{
		g.GET("", h.List)
		g.POST("", h.Insert)
		if model == models.ModelAuthor {
			g.GET("/exact/:firstName/:lastName", h.Exact)
		} else {
			g.GET("/exact/:name", h.Exact)
		}
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
		g.GET("/:id/:child", h.Children)
		g.POST("/:id/:child/:childId", h.Include)
		g.DELETE("/:id/:child/:childId", h.Exclude)
	}
}

func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.requests.Add(1)
		c.Next()
	}
}
