package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/librarydesk/internal/tasks"
)

const taskStatusTimeout = 5 * time.Second

type TaskStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type TaskRunResponse struct {
	TaskID string `json:"task_id"`
	Type   string `json:"type"`
}

// TasksController exposes the maintenance queue.
type TasksController struct {
	queue TaskQueue
}

func NewTasksController(queue TaskQueue) *TasksController {
	return &TasksController{queue: queue}
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task_types": tasks.Types()})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), taskStatusTimeout)
	defer cancel()

	status, err := tc.queue.Status(ctx, id)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	code := http.StatusOK
	if status == backlite.TaskStatusNotFound {
		code = http.StatusNotFound
	}
	c.JSON(code, TaskStatusResponse{ID: id, Status: tasks.StatusName(status)})
}

// RunTask handles POST /api/tasks/:type/run. The body is optional.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req tasks.RunRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	task, err := tasks.NewTask(taskType, req)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	id, err := tc.queue.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}
	respondAccepted(c, "task enqueued", TaskRunResponse{TaskID: id, Type: taskType})
}

// ScheduleController exposes the maintenance cron schedule.
type ScheduleController struct {
	schedule Schedule
}

func NewScheduleController(schedule Schedule) *ScheduleController {
	return &ScheduleController{schedule: schedule}
}

// ListJobs handles GET /api/schedule
func (sc *ScheduleController) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running": sc.schedule.IsRunning(),
		"jobs":    sc.schedule.Jobs(),
	})
}

// RunJob handles POST /api/schedule/:name/run with the job's configured
// parameters.
func (sc *ScheduleController) RunJob(c *gin.Context) {
	name := c.Param("name")
	id, err := sc.schedule.RunNow(name)
	if err != nil {
		respondAppError(c, err)
		return
	}
	respondAccepted(c, "task enqueued", TaskRunResponse{TaskID: id, Type: name})
}
