package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarydesk/internal/scheduler"
	"github.com/mrlokans/librarydesk/internal/tasks"
)

type fakeQueue struct {
	enqueued []backlite.Task
	statuses map[string]backlite.TaskStatus
	err      error
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *fakeQueue) Status(_ context.Context, id string) (backlite.TaskStatus, error) {
	if s, ok := q.statuses[id]; ok {
		return s, nil
	}
	return backlite.TaskStatusNotFound, nil
}

func tasksRouter(q *fakeQueue) *gin.Engine {
	return NewRouter(RouterConfig{Tasks: q})
}

func TestTasksController_ListTaskTypes(t *testing.T) {
	w := doJSON(t, tasksRouter(&fakeQueue{}), "GET", "/api/tasks/types", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		TaskTypes []tasks.TypeInfo `json:"task_types"`
	}](t, w)
	assert.Equal(t, tasks.Types(), resp.TaskTypes)
}

func TestTasksController_RunTask(t *testing.T) {
	t.Run("enqueues report export", func(t *testing.T) {
		q := &fakeQueue{}
		w := doJSON(t, tasksRouter(q), "POST", "/api/tasks/"+tasks.TypeExportSignInReport+"/run", nil)

		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		require.Len(t, q.enqueued, 1)
		assert.Equal(t, tasks.ExportSignInReportTask{Trigger: "manual"}, q.enqueued[0])
		assert.Contains(t, w.Body.String(), `"task_id":"task-1"`)
	})

	t.Run("passes retention to cleanup", func(t *testing.T) {
		q := &fakeQueue{}
		w := doJSON(t, tasksRouter(q), "POST", "/api/tasks/"+tasks.TypeCleanupAuditEvents+"/run", tasks.RunRequest{RetentionDays: 30})

		require.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, q.enqueued, 1)
		assert.Equal(t, tasks.CleanupAuditEventsTask{RetentionDays: 30}, q.enqueued[0])
	})

	t.Run("unknown type", func(t *testing.T) {
		q := &fakeQueue{}
		w := doJSON(t, tasksRouter(q), "POST", "/api/tasks/reindex/run", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unknown task type")
		assert.Empty(t, q.enqueued)
	})

	t.Run("queue failure", func(t *testing.T) {
		q := &fakeQueue{err: errors.New("database is locked")}
		w := doJSON(t, tasksRouter(q), "POST", "/api/tasks/"+tasks.TypeExportSignInReport+"/run", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "locked")
	})
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	q := &fakeQueue{statuses: map[string]backlite.TaskStatus{"abc": backlite.TaskStatusSuccess}}

	w := doJSON(t, tasksRouter(q), "GET", "/api/tasks/abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"abc","status":"success"}`, w.Body.String())

	w = doJSON(t, tasksRouter(q), "GET", "/api/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"not_found"`)
}

func TestScheduleController(t *testing.T) {
	q := &fakeQueue{}
	sched := scheduler.NewMaintenanceScheduler(q, scheduler.AuditCleanupJob("30 3 * * *", 14))
	router := NewRouter(RouterConfig{Tasks: q, Schedule: sched})

	w := doJSON(t, router, "GET", "/api/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Running bool                     `json:"running"`
		Jobs    []scheduler.ScheduledJob `json:"jobs"`
	}](t, w)
	assert.False(t, resp.Running)
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, tasks.TypeCleanupAuditEvents, resp.Jobs[0].Name)
	assert.Nil(t, resp.Jobs[0].NextRun)

	w = doJSON(t, router, "POST", "/api/schedule/"+tasks.TypeCleanupAuditEvents+"/run", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, q.enqueued, 1)
	assert.Equal(t, tasks.CleanupAuditEventsTask{RetentionDays: 14}, q.enqueued[0])

	w = doJSON(t, router, "POST", "/api/schedule/vacuum/run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
