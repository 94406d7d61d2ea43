package enroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
	logsvc "github.com/trezcool/qitc/services/logger"
	inmemdb "github.com/trezcool/qitc/storage/database/inmem"
)

type fixture struct {
	svc     *enroll.Service
	usrRepo user.Repository
	crsRepo course.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	return &fixture{
		svc:     enroll.NewService(inmemdb.NewEnrollmentRepository(db), usrRepo, crsRepo, logsvc.NewNopLogger()),
		usrRepo: usrRepo,
		crsRepo: crsRepo,
	}
}

func (f *fixture) addUser(t *testing.T, role user.Role) user.User {
	t.Helper()
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      "Test " + string(role),
		Email:     uuid.NewString() + "@test.cd",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	usr, err := f.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return usr
}

func (f *fixture) addCourse(t *testing.T, name string, taskCount int) course.Course {
	t.Helper()
	ctx := context.Background()
	crs, err := f.crsRepo.CreateCourse(ctx, course.Course{Name: name, Status: course.StatusActive})
	if err != nil {
		t.Fatalf("creating course: %v", err)
	}
	for i := 0; i < taskCount; i++ {
		_, err = f.crsRepo.CreateTask(ctx, course.Task{
			Name:     name + " task",
			Status:   course.TaskStatusClosed,
			CourseID: crs.ID,
		})
		if err != nil {
			t.Fatalf("creating task: %v", err)
		}
	}
	return crs
}

func TestService_Enroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addUser(t, user.RoleStudent)
	crs := f.addCourse(t, "Go 101", 3)

	enr, err := f.svc.Enroll(ctx, crs.ID, student.ID)
	assert.NoError(t, err)
	assert.Equal(t, enroll.Enrollment{UserID: student.ID, CourseID: crs.ID}, enr)

	// one journal row per task, zeroed
	entries, err := f.svc.Journal(ctx, student.ID)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, student.ID, e.UserID)
		assert.Zero(t, e.Mark)
		assert.Empty(t, e.Comment)
	}

	// student listed exactly once
	students, err := f.svc.Students(ctx, crs.ID)
	assert.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, student.ID, students[0].ID)

	// counter bumped
	got, err := f.crsRepo.GetCourseByID(ctx, crs.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.StudentsCount)
}

func TestService_Enroll_duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addUser(t, user.RoleStudent)
	crs := f.addCourse(t, "Go 101", 2)

	_, err := f.svc.Enroll(ctx, crs.ID, student.ID)
	assert.NoError(t, err)

	_, err = f.svc.Enroll(ctx, crs.ID, student.ID)
	assert.Equal(t, enroll.ErrAlreadyEnrolled, err)

	// state unchanged by the failed attempt
	students, err := f.svc.Students(ctx, crs.ID)
	assert.NoError(t, err)
	assert.Len(t, students, 1)
	entries, err := f.svc.Journal(ctx, student.ID)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	got, _ := f.crsRepo.GetCourseByID(ctx, crs.ID)
	assert.Equal(t, 1, got.StudentsCount)
}

func TestService_Enroll_preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plainUser := f.addUser(t, user.RoleUser)
	admin := f.addUser(t, user.RoleAdmin)
	student := f.addUser(t, user.RoleStudent)
	crs := f.addCourse(t, "Go 101", 2)

	tests := []struct {
		name     string
		courseID int
		userID   string
		wantErr  error
	}{
		{name: "not a student (user)", courseID: crs.ID, userID: plainUser.ID, wantErr: enroll.ErrNotAStudent},
		{name: "not a student (admin)", courseID: crs.ID, userID: admin.ID, wantErr: enroll.ErrNotAStudent},
		{name: "unknown user", courseID: crs.ID, userID: "no-such-id", wantErr: user.ErrNotFound},
		{name: "unknown course", courseID: 999, userID: student.ID, wantErr: course.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Enroll(ctx, tt.courseID, tt.userID)
			assert.Equal(t, tt.wantErr, err)
		})
	}

	// nothing was written by the failed attempts
	students, err := f.svc.Students(ctx, crs.ID)
	assert.NoError(t, err)
	assert.Empty(t, students)
	entries, err := f.svc.Journal(ctx, plainUser.ID)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_Enroll_emptyCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addUser(t, user.RoleStudent)
	crs := f.addCourse(t, "No Tasks Yet", 0)

	_, err := f.svc.Enroll(ctx, crs.ID, student.ID)
	assert.NoError(t, err)

	entries, err := f.svc.Journal(ctx, student.ID)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_Unenroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addUser(t, user.RoleStudent)
	crs := f.addCourse(t, "Go 101", 3)
	other := f.addCourse(t, "Go 201", 1)

	_, err := f.svc.Enroll(ctx, crs.ID, student.ID)
	assert.NoError(t, err)
	_, err = f.svc.Enroll(ctx, other.ID, student.ID)
	assert.NoError(t, err)

	assert.NoError(t, f.svc.Unenroll(ctx, crs.ID, student.ID))

	// journal rows of the unenrolled course removed; other course untouched
	entries, err := f.svc.Journal(ctx, student.ID)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	students, err := f.svc.Students(ctx, crs.ID)
	assert.NoError(t, err)
	assert.Empty(t, students)
	got, _ := f.crsRepo.GetCourseByID(ctx, crs.ID)
	assert.Zero(t, got.StudentsCount)

	// not enrolled anymore
	assert.Equal(t, enroll.ErrNotEnrolled, f.svc.Unenroll(ctx, crs.ID, student.ID))
}

func TestService_Students_unknownCourse(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Students(context.Background(), 42)
	assert.Equal(t, course.ErrNotFound, err)
}
