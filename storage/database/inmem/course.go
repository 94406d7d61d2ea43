package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/qitc/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) queryCourses() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses
}

func (repo *courseRepository) queryTasks() []course.Task {
	tasks := make([]course.Task, 0, len(repo.db.tasks))
	for _, tsk := range repo.db.tasks {
		tasks = append(tasks, *tsk)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func (repo *courseRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.Name == name {
			return course.ErrNameExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.courses {
		if existing.Name == crs.Name {
			return course.Course{}, course.ErrNameExists
		}
	}
	repo.db.courseSeq++
	crs.ID = repo.db.courseSeq
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context, offset, limit int) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return paginate(repo.queryCourses(), offset, limit), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origCrs, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	for _, existing := range repo.db.courses {
		if existing.Name == crs.Name && existing.ID != crs.ID {
			return course.Course{}, course.ErrNameExists
		}
	}
	origCrs.Name = crs.Name
	origCrs.Description = crs.Description
	origCrs.Status = crs.Status
	return *origCrs, nil
}

func (repo *courseRepository) SetCourseStatus(ctx context.Context, id int, status course.Status) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	crs.Status = status
	return *crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.courses, id)

	// cascade the way the FKs do
	for taskID, tsk := range repo.db.tasks {
		if tsk.CourseID != id {
			continue
		}
		delete(repo.db.tasks, taskID)
		for key := range repo.db.journal {
			if key.taskID == taskID {
				delete(repo.db.journal, key)
			}
		}
	}
	for key := range repo.db.enrollments {
		if key.courseID == id {
			delete(repo.db.enrollments, key)
		}
	}
	return nil
}

// Tasks

func (repo *courseRepository) CreateTask(ctx context.Context, tsk course.Task) (course.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.taskSeq++
	tsk.ID = repo.db.taskSeq
	repo.db.tasks[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *courseRepository) GetTaskByID(ctx context.Context, id int) (course.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tsk, ok := repo.db.tasks[id]; ok {
		return *tsk, nil
	}
	return course.Task{}, course.ErrTaskNotFound
}

func (repo *courseRepository) QueryTasksByCourseID(ctx context.Context, courseID int) ([]course.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := make([]course.Task, 0)
	for _, tsk := range repo.queryTasks() {
		if tsk.CourseID == courseID {
			tasks = append(tasks, tsk)
		}
	}
	return tasks, nil
}

func (repo *courseRepository) QueryAllTasks(ctx context.Context, offset, limit int) ([]course.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return paginate(repo.queryTasks(), offset, limit), nil
}

func (repo *courseRepository) UpdateTask(ctx context.Context, tsk course.Task) (course.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origTsk, ok := repo.db.tasks[tsk.ID]
	if !ok {
		return course.Task{}, course.ErrTaskNotFound
	}
	origTsk.Name = tsk.Name
	origTsk.Description = tsk.Description
	origTsk.Status = tsk.Status
	origTsk.CourseID = tsk.CourseID
	return *origTsk, nil
}

func (repo *courseRepository) SetTaskStatus(ctx context.Context, id int, status course.TaskStatus) (course.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tsk, ok := repo.db.tasks[id]
	if !ok {
		return course.Task{}, course.ErrTaskNotFound
	}
	tsk.Status = status
	return *tsk, nil
}

func (repo *courseRepository) DeleteTask(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tasks[id]; !ok {
		return course.ErrTaskNotFound
	}
	delete(repo.db.tasks, id)
	for key := range repo.db.journal {
		if key.taskID == id {
			delete(repo.db.journal, key)
		}
	}
	return nil
}
