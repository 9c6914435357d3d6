package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/logging"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

func (h *Handler) createProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorView{Detail: "invalid body: " + err.Error()})
		return
	}
	if req.Description == nil {
		c.JSON(http.StatusUnprocessableEntity, errorView{Detail: "invalid description: field required"})
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), req.Name, *req.Description)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, toProjectView(p))
}

func (h *Handler) listProjects(c *gin.Context) {
	rendered := false
	if v := c.Query("rendered"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, errorView{Detail: "invalid rendered: must be a boolean"})
			return
		}
		rendered = b
	}

	items, err := h.svc.ListProjects(c.Request.Context(), rendered)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	out := make([]projectView, 0, len(items))
	for i := range items {
		out = append(out, toProjectView(&items[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getProject(c *gin.Context) {
	p, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, toProjectView(p))
}

func (h *Handler) createMessage(c *gin.Context) {
	var req createMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorView{Detail: "invalid body: " + err.Error()})
		return
	}
	if req.Content == nil {
		c.JSON(http.StatusUnprocessableEntity, errorView{Detail: "invalid content: field required"})
		return
	}

	m, err := h.svc.CreateMessage(c.Request.Context(), c.Param("id"), *req.Content)
	if err != nil {
		h.fail(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, toMessageView(m))
}

func (h *Handler) listMessages(c *gin.Context) {
	msgs, err := h.svc.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Project not found")
		return
	}

	out := make([]messageView, 0, len(msgs))
	for i := range msgs {
		out = append(out, toMessageView(&msgs[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) latestEvent(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.svc.GetProject(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err, "Project not found")
		return
	}

	ev, err := h.events.Latest(ctx, p.ID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	if ev == nil {
		c.JSON(http.StatusNotFound, errorView{Detail: "No events for project"})
		return
	}
	c.JSON(http.StatusOK, ev)
}

// fail maps domain errors onto HTTP statuses. Anything unclassified is a 500.
func (h *Handler) fail(c *gin.Context, err error, notFound string) {
	var (
		verr   *domain.ValidationError
		genErr *domain.GenerationError
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		c.JSON(http.StatusNotFound, errorView{Detail: notFound})
	case errors.Is(err, domain.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, errorView{Detail: "Message already processed"})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, errorView{Detail: verr.Error()})
	case errors.As(err, &genErr):
		logging.FromContext(c.Request.Context()).Error("generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorView{Detail: err.Error()})
	default:
		logging.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorView{Detail: "internal server error"})
	}
}
