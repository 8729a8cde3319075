package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/jobs"
	"github.com/fsdevblog/placement-billing/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

// JobsHandler асинхронная пакетная покупка: задание ставится в очередь, результат запрашивается отдельно.
type JobsHandler struct {
	queue jobs.Queue
}

func NewJobsHandler(queue jobs.Queue) *JobsHandler {
	return &JobsHandler{queue: queue}
}

// Submit POST RouteGroup + AsyncBatchPurchaseRoute.
func (h *JobsHandler) Submit(c *gin.Context) {
	var params BatchPurchaseParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	state, err := jobs.Submit(reqCtx, h.queue, jobs.NewJob(middlewares.CurrentUserID(c), params.items()))
	if err != nil {
		_ = c.AbortWithError(http.StatusServiceUnavailable, fmt.Errorf("submit batch job: %w", err)).
			SetType(gin.ErrorTypePrivate)
		return
	}
	c.Header("Location", RouteGroup+JobsRoutePrefix+state.ID)
	c.JSON(http.StatusAccepted, state)
}

// Status GET RouteGroup + JobRoute. Чужие задания неотличимы от несуществующих.
func (h *JobsHandler) Status(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	state, err := h.queue.GetState(reqCtx, c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			abortWithServiceErr(c, fmt.Errorf("job %s: %w", c.Param("id"), domain.ErrNotFoundOrForbidden))
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	if state.UserID != middlewares.CurrentUserID(c) && middlewares.CurrentRole(c) != domain.RoleAdmin {
		abortWithServiceErr(c, fmt.Errorf("job %s: %w", state.ID, domain.ErrNotFoundOrForbidden))
		return
	}
	c.JSON(http.StatusOK, state)
}
