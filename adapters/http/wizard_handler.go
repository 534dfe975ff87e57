package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	wizardUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/wizard"
	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type WizardHandler struct {
	wizardUseCase   *wizardUC.WizardUseCase
	saveDraftUC     *wizardUC.SaveDraftUseCase
	generateUseCase *wizardUC.GeneratePortfolioUseCase
	logger          logger.Logger
}

func NewWizardHandler(
	wizardUseCase *wizardUC.WizardUseCase,
	saveDraftUC *wizardUC.SaveDraftUseCase,
	generateUC *wizardUC.GeneratePortfolioUseCase,
	log logger.Logger,
) *WizardHandler {
	return &WizardHandler{
		wizardUseCase:   wizardUseCase,
		saveDraftUC:     saveDraftUC,
		generateUseCase: generateUC,
		logger:          log,
	}
}

func ownerOrAbort(c *gin.Context) (uuid.UUID, bool) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
	}
	return ownerID, ok
}

func entryIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid entry ID", err))
		return uuid.Nil, false
	}
	return id, true
}

func respond[T any](c *gin.Context, status int, out T, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(status, out)
}

func (h *WizardHandler) Get(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	view, err := h.wizardUseCase.Get(c.Request.Context(), ownerID)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) Reset(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	view, err := h.wizardUseCase.Reset(c.Request.Context(), ownerID)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) Next(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	out, err := h.wizardUseCase.Next(c.Request.Context(), ownerID)
	respond(c, http.StatusOK, out, err)
}

func (h *WizardHandler) Prev(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	out, err := h.wizardUseCase.Prev(c.Request.Context(), ownerID)
	respond(c, http.StatusOK, out, err)
}

func (h *WizardHandler) Jump(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	var req JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	out, err := h.wizardUseCase.JumpTo(c.Request.Context(), ownerID, req.Step)
	respond(c, http.StatusOK, out, err)
}

func (h *WizardHandler) Submit(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	d, err := h.wizardUseCase.Submit(c.Request.Context(), ownerID)
	respond(c, http.StatusOK, d, err)
}

func (h *WizardHandler) UpdatePersonalInfo(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	var patch draft.PersonalInfoPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	view, err := h.wizardUseCase.UpdatePersonalInfo(c.Request.Context(), ownerID, patch)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) ReplaceSkills(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	var req ReplaceSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	view, err := h.wizardUseCase.ReplaceSkills(c.Request.Context(), ownerID, req.Skills)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) AddSkill(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	var req AddSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	view, err := h.wizardUseCase.AddSkill(c.Request.Context(), ownerID, req.Skill)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) RemoveSkill(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	view, err := h.wizardUseCase.RemoveSkill(c.Request.Context(), ownerID, c.Param("skill"))
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) RemoveLastSkill(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	view, err := h.wizardUseCase.RemoveLastSkill(c.Request.Context(), ownerID)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) ClearSkills(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	view, err := h.wizardUseCase.ClearSkills(c.Request.Context(), ownerID)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) AddExperience(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	out, err := h.wizardUseCase.AddExperience(c.Request.Context(), ownerID)
	respond(c, http.StatusCreated, out, err)
}

func (h *WizardHandler) UpdateExperience(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	id, ok := entryIDParam(c)
	if !ok {
		return
	}
	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	view, err := h.wizardUseCase.UpdateExperience(c.Request.Context(), ownerID, id, req.Field, req.Value)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) RemoveExperience(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	id, ok := entryIDParam(c)
	if !ok {
		return
	}
	view, err := h.wizardUseCase.RemoveExperience(c.Request.Context(), ownerID, id)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) AddProject(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	out, err := h.wizardUseCase.AddProject(c.Request.Context(), ownerID)
	respond(c, http.StatusCreated, out, err)
}

func (h *WizardHandler) UpdateProject(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	id, ok := entryIDParam(c)
	if !ok {
		return
	}
	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	view, err := h.wizardUseCase.UpdateProject(c.Request.Context(), ownerID, id, req.Field, req.Value)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) RemoveProject(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	id, ok := entryIDParam(c)
	if !ok {
		return
	}
	view, err := h.wizardUseCase.RemoveProject(c.Request.Context(), ownerID, id)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) AddProjectTech(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	id, ok := entryIDParam(c)
	if !ok {
		return
	}
	var req AddTechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	view, err := h.wizardUseCase.AddProjectTech(c.Request.Context(), ownerID, id, req.Tech)
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) RemoveProjectTech(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	id, ok := entryIDParam(c)
	if !ok {
		return
	}
	view, err := h.wizardUseCase.RemoveProjectTech(c.Request.Context(), ownerID, id, c.Param("tech"))
	respond(c, http.StatusOK, view, err)
}

func (h *WizardHandler) Save(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	out, err := h.saveDraftUC.Execute(c.Request.Context(), wizardUC.SaveDraftInput{OwnerID: ownerID})
	respond(c, http.StatusOK, out, err)
}

func (h *WizardHandler) Generate(c *gin.Context) {
	ownerID, ok := ownerOrAbort(c)
	if !ok {
		return
	}
	out, err := h.generateUseCase.Execute(c.Request.Context(), wizardUC.GeneratePortfolioInput{OwnerID: ownerID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToPortfolioDTO(out.Portfolio))
}
