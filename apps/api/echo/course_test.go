package echoapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/user"
)

func TestCourseAPI_crud(t *testing.T) {
	app := newTestApp(t)
	admin := app.seedUser(t, "Root", user.RoleAdmin, "Sup3rS3cret!")
	adminToken := app.getToken(t, admin)

	// create requires admin
	body := []byte(`{"name":"Go 101","description":"intro"}`)
	req, rec := newRequest(http.MethodPost, "/v1/courses", body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req, rec = newAuthRequest(http.MethodPost, "/v1/courses", adminToken, body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var crs course.Course
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crs))
	assert.Equal(t, course.StatusActive, crs.Status)

	// duplicate name is a field error
	req, rec = newAuthRequest(http.MethodPost, "/v1/courses", adminToken, body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// public list and detail
	req, rec = newRequest(http.MethodGet, "/v1/courses")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var listed []course.Course
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	path := "/v1/courses/" + strconv.Itoa(crs.ID)
	req, rec = newRequest(http.MethodGet, path)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// update
	req, rec = newAuthRequest(http.MethodPut, path, adminToken, []byte(`{"name":"Go 101","description":"intro","status":"closed"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var updated course.Course
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, course.StatusClosed, updated.Status)

	// same payload reports no change
	req, rec = newAuthRequest(http.MethodPut, path, adminToken, []byte(`{"name":"Go 101","description":"intro","status":"closed"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marshalObj(t, SuccessResponse{Success: "no changes"}))
	assert.NoError(t, err)
	assert.True(t, ok)

	// soft delete keeps the row
	req, rec = newAuthRequest(http.MethodDelete, path, adminToken)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	req, rec = newRequest(http.MethodGet, path)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var softDeleted course.Course
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &softDeleted))
	assert.Equal(t, course.StatusDeleted, softDeleted.Status)

	// hard delete removes it
	req, rec = newAuthRequest(http.MethodDelete, path+"?hard=true", adminToken)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	req, rec = newRequest(http.MethodGet, path)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskAPI_crud(t *testing.T) {
	app := newTestApp(t)
	admin := app.seedUser(t, "Root", user.RoleAdmin, "Sup3rS3cret!")
	adminToken := app.getToken(t, admin)
	crs := app.seedCourse(t, "Go 101", 0)

	// create under a missing course
	req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", adminToken, []byte(`{"name":"orphan","course_id":999}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := marshalObj(t, map[string]interface{}{"name": "hello world", "course_id": crs.ID})
	req, rec = newAuthRequest(http.MethodPost, "/v1/tasks", adminToken, body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var tsk course.Task
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tsk))
	assert.Equal(t, course.TaskStatusClosed, tsk.Status)

	// public course tasks listing
	req, rec = newRequest(http.MethodGet, "/v1/courses/"+strconv.Itoa(crs.ID)+"/tasks")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var tasks []course.Task
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 1)

	// status transitions
	path := "/v1/tasks/" + strconv.Itoa(tsk.ID)
	req, rec = newAuthRequest(http.MethodPut, path+"/status", adminToken, []byte(`{"status":"inProcess"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// `deleted` is not reachable through the status endpoint
	req, rec = newAuthRequest(http.MethodPut, path+"/status", adminToken, []byte(`{"status":"deleted"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marshalObj(t, SuccessResponse{Success: "no changes"}))
	assert.NoError(t, err)
	assert.True(t, ok)

	req, rec = newAuthRequest(http.MethodPut, path+"/status", adminToken, []byte(`{"status":"bogus"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// hard delete
	req, rec = newAuthRequest(http.MethodDelete, path+"?hard=true", adminToken)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	req, rec = newRequest(http.MethodGet, path)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
