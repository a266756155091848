package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/arrendando-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Worker statistics (active, completed, failed, queue length) and the schedule of each recurring job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// Run triggers a scheduled job immediately. With async=true the job is
// queued on the worker pool instead and the response is 202.
// @Summary Run background job
// @Description Runs overdue_payments, contract_states or report_cache_cleanup now
// @Tags Jobs
// @Produce json
// @Param name path string true "Job name"
// @Param async query bool false "Queue the job and return without waiting"
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /jobs/{name}/run [post]
func (h *JobHandler) Run(c *gin.Context) {
	name := c.Param("name")
	if c.Query("async") == "true" {
		if err := h.jobService.Enqueue(name); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Trabajo encolado", "job": name})
		return
	}
	if err := h.jobService.Run(name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trabajo ejecutado", "job": name})
}
