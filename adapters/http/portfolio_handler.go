package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/preview"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type PortfolioHandler struct {
	portfolioUseCase *portfolioUC.PortfolioUseCase
	logger           logger.Logger
}

func NewPortfolioHandler(uc *portfolioUC.PortfolioUseCase, log logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{portfolioUseCase: uc, logger: log}
}

func (h *PortfolioHandler) renderHTML(c *gin.Context, doc preview.Document) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	opts := preview.Options{Mode: preview.ParseMode(c.Query("mode"))}
	if err := preview.Render(c.Writer, doc, opts); err != nil {
		c.Error(apperror.NewInternal("failed to render portfolio page", err))
	}
}

// GetPreview answers with JSON by default and with the rendered page for
// ?format=html.
func (h *PortfolioHandler) GetPreview(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	out, err := h.portfolioUseCase.GetPreview(c.Request.Context(), ownerID)
	if err != nil {
		c.Error(err)
		return
	}
	if c.Query("format") == "html" {
		h.renderHTML(c, out.Document)
		return
	}
	c.JSON(http.StatusOK, ToPreviewDTO(out, preview.ParseMode(c.Query("mode"))))
}

func (h *PortfolioHandler) Publish(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	out, err := h.portfolioUseCase.Publish(c.Request.Context(), portfolioUC.PublishInput{
		OwnerID:  ownerID,
		Username: req.Username,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"portfolio": ToPortfolioDTO(out.Portfolio),
		"share_url": out.ShareURL,
	})
}

func (h *PortfolioHandler) ShareLink(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	out, err := h.portfolioUseCase.ShareLink(c.Request.Context(), ownerID)
	respond(c, http.StatusOK, out, err)
}

func (h *PortfolioHandler) GetPublic(c *gin.Context) {
	p, err := h.portfolioUseCase.GetPublic(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToPublicPortfolioDTO(p))
}

func (h *PortfolioHandler) GetPublicPage(c *gin.Context) {
	p, err := h.portfolioUseCase.GetPublic(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Error(err)
		return
	}
	h.renderHTML(c, preview.FromPortfolio(p))
}

func (h *PortfolioHandler) ListBySkill(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, err := h.portfolioUseCase.ListBySkill(c.Request.Context(), portfolioUC.ListBySkillInput{
		Skill: c.Query("skill"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		c.Error(err)
		return
	}
	dtos := make([]PortfolioSummaryDTO, len(items))
	for i, p := range items {
		dtos[i] = ToPortfolioSummaryDTO(p)
	}
	c.JSON(http.StatusOK, dtos)
}
