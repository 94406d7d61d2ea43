package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/application"
	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
	emailsvc "github.com/trezcool/qitc/services/email"
	logsvc "github.com/trezcool/qitc/services/logger"
	inmemdb "github.com/trezcool/qitc/storage/database/inmem"
)

var errMissingTokenBody = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testApp struct {
	server     Server
	conf       *core.Config
	usrRepo    user.Repository
	usrSvc     *user.Service
	authSvc    *auth.Service
	crsSvc     *course.Service
	enrSvc     *enroll.Service
	appSvc     *application.Service
	validate   *validator.Validate
	translator ut.Translator
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		Env:               "TEST",
		TestMode:          true,
		AppName:           "QITC",
		SecretKey:         "test-secret",
		MinPasswordLength: 8,
		DefaultFromEmail:  mail.Address{Name: "QITC", Address: "noreply@test.cd"},
		AdminEmail:        mail.Address{Address: "admin@test.cd"},
		JWT:               core.JWTConfig{Algorithm: "HS256", LifetimeMinutes: 60},
	}

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	logger := logsvc.NewNopLogger()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)

	app := &testApp{
		conf:    conf,
		usrRepo: usrRepo,
		usrSvc:  user.NewService(usrRepo, conf, logger),
		authSvc: auth.NewService(inmemdb.NewRevocationRepository(db), conf, logger),
		crsSvc:  course.NewService(crsRepo, logger),
		enrSvc:  enroll.NewService(inmemdb.NewEnrollmentRepository(db), usrRepo, crsRepo, logger),
		appSvc:  application.NewService(inmemdb.NewApplicationRepository(db), mailSvc, conf, logger),
	}

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	user.RegisterCustomValidators(validate, translator)
	app.validate = validate
	app.translator = translator

	app.server = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		AuthSvc:    app.authSvc,
		UserSvc:    app.usrSvc,
		CourseSvc:  app.crsSvc,
		EnrollSvc:  app.enrSvc,
		AppSvc:     app.appSvc,
		Validate:   validate,
		Translator: translator,
	})
	return app
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// seedUser creates a user with the given role directly in the repository.
func (app *testApp) seedUser(t *testing.T, name string, role user.Role, pwd string) user.User {
	t.Helper()
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     uuid.NewString() + "@test.cd",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	usr, err := app.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return usr
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := app.authSvc.Issue(usr)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
