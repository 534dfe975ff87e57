package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio-builder/pkg/auth"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type Handlers struct {
	Auth      *AuthHandler
	Wizard    *WizardHandler
	Portfolio *PortfolioHandler
}

func NewRouter(h Handlers, jwtSvc *auth.JWTService, log logger.Logger) *gin.Engine {
	router := gin.New()
	// Skill and tech names travel in the path and may contain "/".
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(gin.Recovery(), RequestMiddleware(log), ErrorMiddleware(log))

	authMiddleware := AuthMiddleware(jwtSvc, log)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/p/:username", h.Portfolio.GetPublic)
		api.GET("/p/:username/page", h.Portfolio.GetPublicPage)
		api.GET("/portfolios", h.Portfolio.ListBySkill)

		private := api.Group("/")
		private.Use(authMiddleware)
		{
			private.GET("/me", h.Auth.Me)

			w := private.Group("/wizard")
			{
				w.GET("", h.Wizard.Get)
				w.DELETE("", h.Wizard.Reset)
				w.POST("/next", h.Wizard.Next)
				w.POST("/prev", h.Wizard.Prev)
				w.POST("/jump", h.Wizard.Jump)
				w.GET("/submit", h.Wizard.Submit)
				w.POST("/save", h.Wizard.Save)
				w.POST("/generate", h.Wizard.Generate)

				w.PUT("/personal", h.Wizard.UpdatePersonalInfo)

				w.PUT("/skills", h.Wizard.ReplaceSkills)
				w.POST("/skills", h.Wizard.AddSkill)
				w.DELETE("/skills", h.Wizard.ClearSkills)
				w.DELETE("/skills/last", h.Wizard.RemoveLastSkill)
				w.DELETE("/skills/:skill", h.Wizard.RemoveSkill)

				w.POST("/experiences", h.Wizard.AddExperience)
				w.PATCH("/experiences/:id", h.Wizard.UpdateExperience)
				w.DELETE("/experiences/:id", h.Wizard.RemoveExperience)

				w.POST("/projects", h.Wizard.AddProject)
				w.PATCH("/projects/:id", h.Wizard.UpdateProject)
				w.DELETE("/projects/:id", h.Wizard.RemoveProject)
				w.POST("/projects/:id/tech", h.Wizard.AddProjectTech)
				w.DELETE("/projects/:id/tech/:tech", h.Wizard.RemoveProjectTech)
			}

			p := private.Group("/portfolio")
			{
				p.GET("/preview", h.Portfolio.GetPreview)
				p.POST("/publish", h.Portfolio.Publish)
				p.GET("/share", h.Portfolio.ShareLink)
			}
		}
	}

	return router
}
