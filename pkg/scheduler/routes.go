package scheduler

import (
	"errors"
	"net/http"

	"github.com/code-100-precent/LingQfight/pkg/utils/response"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes exposes task inspection and control under r:
//
//	GET    /tasks          every task's status
//	GET    /tasks/:id      one task's status
//	POST   /tasks/:id/run  run a task now and wait for it
//	DELETE /tasks/:id      unschedule a task
func (s *Scheduler) RegisterRoutes(r gin.IRouter) {
	r.GET("/tasks", s.handleList)
	r.GET("/tasks/:id", s.handleStatus)
	r.POST("/tasks/:id/run", s.handleRun)
	r.DELETE("/tasks/:id", s.handleRemove)
}

func (s *Scheduler) handleList(c *gin.Context) {
	response.Success(c, s.ListTasks())
}

func (s *Scheduler) handleStatus(c *gin.Context) {
	st, err := s.Status(c.Param("id"))
	if err != nil {
		failTask(c, err)
		return
	}
	response.Success(c, st)
}

func (s *Scheduler) handleRun(c *gin.Context) {
	id := c.Param("id")
	if err := s.RunNow(id); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			failTask(c, err)
			return
		}
		// the run happened; report its failure alongside the recorded status
		st, _ := s.Status(id)
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error(), "task": st})
		return
	}
	st, _ := s.Status(id)
	response.Success(c, st)
}

func (s *Scheduler) handleRemove(c *gin.Context) {
	if err := s.RemoveTask(c.Param("id")); err != nil {
		failTask(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func failTask(c *gin.Context, err error) {
	if errors.Is(err, ErrTaskNotFound) {
		response.Fail(c, http.StatusNotFound, err.Error())
		return
	}
	response.Fail(c, http.StatusInternalServerError, err.Error())
}
