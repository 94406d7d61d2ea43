package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/qitc/core/course"
	logsvc "github.com/trezcool/qitc/services/logger"
	inmemdb "github.com/trezcool/qitc/storage/database/inmem"
)

func newTestService(t *testing.T) *course.Service {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	return course.NewService(inmemdb.NewCourseRepository(db), logsvc.NewNopLogger())
}

func TestService_Create(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "Go 101", Description: "intro"})
	assert.NoError(t, err)
	assert.NotZero(t, crs.ID)
	assert.Equal(t, course.StatusActive, crs.Status)
	assert.Zero(t, crs.StudentsCount)

	_, err = svc.Create(ctx, course.NewCourse{Name: "Go 101"})
	assert.Equal(t, course.ErrNameExists, err)
}

func TestService_Update(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "Go 101", Description: "intro"})
	assert.NoError(t, err)

	updated, err := svc.Update(ctx, crs.ID, course.UpdateCourse{Name: "Go 101", Description: "intro", Status: "closed"})
	assert.NoError(t, err)
	assert.Equal(t, course.StatusClosed, updated.Status)

	// identical values: no change, not a missing course
	_, err = svc.Update(ctx, crs.ID, course.UpdateCourse{Name: "Go 101", Description: "intro", Status: "closed"})
	assert.Equal(t, course.ErrNoChange, err)

	_, err = svc.Update(ctx, 999, course.UpdateCourse{Name: "X", Status: "active"})
	assert.Equal(t, course.ErrNotFound, err)
}

func TestService_SoftDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "Go 101"})
	assert.NoError(t, err)

	deleted, err := svc.SoftDelete(ctx, crs.ID)
	assert.NoError(t, err)
	assert.Equal(t, course.StatusDeleted, deleted.Status)

	// row still there
	got, err := svc.GetByID(ctx, crs.ID)
	assert.NoError(t, err)
	assert.Equal(t, course.StatusDeleted, got.Status)

	// twice: no change
	_, err = svc.SoftDelete(ctx, crs.ID)
	assert.Equal(t, course.ErrNoChange, err)
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "Go 101"})
	assert.NoError(t, err)
	tsk, err := svc.CreateTask(ctx, course.NewTask{Name: "hello world", CourseID: crs.ID})
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(ctx, crs.ID))

	_, err = svc.GetByID(ctx, crs.ID)
	assert.Equal(t, course.ErrNotFound, err)
	// tasks cascade
	_, err = svc.GetTaskByID(ctx, tsk.ID)
	assert.Equal(t, course.ErrTaskNotFound, err)

	assert.Equal(t, course.ErrNotFound, svc.Delete(ctx, crs.ID))
}

func TestService_CreateTask(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// course must exist
	_, err := svc.CreateTask(ctx, course.NewTask{Name: "orphan", CourseID: 999})
	assert.Equal(t, course.ErrNotFound, err)

	crs, err := svc.Create(ctx, course.NewCourse{Name: "Go 101"})
	assert.NoError(t, err)

	tsk, err := svc.CreateTask(ctx, course.NewTask{Name: "hello world", CourseID: crs.ID})
	assert.NoError(t, err)
	assert.NotZero(t, tsk.ID)
	assert.Equal(t, course.TaskStatusClosed, tsk.Status)

	tasks, err := svc.QueryTasksByCourseID(ctx, crs.ID)
	assert.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestService_SetTaskStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "Go 101"})
	assert.NoError(t, err)
	tsk, err := svc.CreateTask(ctx, course.NewTask{Name: "hello world", CourseID: crs.ID})
	assert.NoError(t, err)

	tests := []struct {
		name    string
		status  course.TaskStatus
		wantErr error
	}{
		{name: "transition", status: course.TaskStatusInProcess},
		{name: "same status", status: course.TaskStatusInProcess, wantErr: course.ErrNoChange},
		{name: "deleted not a transition", status: course.TaskStatusDeleted, wantErr: course.ErrNoChange},
		{name: "unknown status", status: course.TaskStatus("paused"), wantErr: course.ErrUnknownStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SetTaskStatus(ctx, tsk.ID, tt.status)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
		})
	}

	// soft delete goes through its own operation
	deleted, err := svc.SoftDeleteTask(ctx, tsk.ID)
	assert.NoError(t, err)
	assert.Equal(t, course.TaskStatusDeleted, deleted.Status)
	_, err = svc.SoftDeleteTask(ctx, tsk.ID)
	assert.Equal(t, course.ErrNoChange, err)
}
