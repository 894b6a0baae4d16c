package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/elevezen/elevezen/apps/api/echo"
	"github.com/elevezen/elevezen/core/student"
	"github.com/elevezen/elevezen/core/user"
	testutil "github.com/elevezen/elevezen/tests"
)

func createStudent(t *testing.T, app Server, token string, body map[string]interface{}) student.Student {
	req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, marchallObj(t, body))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("createStudent() failed: %v %v", rec.Code, rec.Body.String())
	}
	var st student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return st
}

func Test_studentApi_permissions(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane", "jane@test.cd", "", user.RoleUser, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)

	body := marchallObj(t, map[string]interface{}{"first_name": "Ada", "last_name": "Lovelace"})

	// auth required for reads
	req, rec := newRequest(http.MethodGet, "/v1/students")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	// any authed user may read
	req, rec = newAuthRequest(http.MethodGet, "/v1/students", getToken(t, usr))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// writes are admin-only
	req, rec = newAuthRequest(http.MethodPost, "/v1/students", getToken(t, usr), body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/students", getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func Test_studentApi_crud(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	token := getToken(t, admin)

	st := createStudent(t, app, token, map[string]interface{}{
		"first_name": "ada",
		"last_name":  "Lovelace",
		"age":        21,
		"gender":     student.GenderFemale,
		"class":      student.Class1,
		"comment":    "Très motivée.",
	})
	assert.Equal(t, "ada", st.FirstName)
	assert.Equal(t, student.Class1, st.Class)

	// invalid enrollment data
	req, rec := newAuthRequest(http.MethodPost, "/v1/students", token,
		marchallObj(t, map[string]interface{}{"first_name": "Bob", "last_name": "K", "gender": "other"}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// detail includes the initial comment and empty grade groups
	req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+st.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var detail student.Detail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, float64(0), detail.Average)
	assert.Equal(t, student.GradePoor, detail.GradeColor)
	assert.Len(t, detail.Grades, len(student.Subjects))
	if assert.Len(t, detail.Comments, 1) {
		assert.Equal(t, "Très motivée.", detail.Comments[0].Content)
	}

	// partial update: age only
	req, rec = newAuthRequest(http.MethodPut, "/v1/students/"+st.ID, token, marchallObj(t, map[string]interface{}{"age": 22}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var updated student.Student
	_ = json.Unmarshal(rec.Body.Bytes(), &updated)
	assert.Equal(t, 22, updated.Age)
	assert.Equal(t, "ada", updated.FirstName)

	// delete
	req, rec = newAuthRequest(http.MethodDelete, "/v1/students/"+st.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+st.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_studentApi_grades(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	token := getToken(t, admin)

	st := createStudent(t, app, token, map[string]interface{}{"first_name": "Ada", "last_name": "Lovelace"})

	addGrade := func(t *testing.T, subject string, value float64) student.Grade {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+st.ID+"/grades", token,
			marchallObj(t, map[string]interface{}{"subject": subject, "value": value}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("addGrade() failed: %v %v", rec.Code, rec.Body.String())
		}
		var g student.Grade
		_ = json.Unmarshal(rec.Body.Bytes(), &g)
		return g
	}

	addGrade(t, student.SubjectJavaScript, 15)
	addGrade(t, student.SubjectLinux, 9)
	g := addGrade(t, student.SubjectDocker, 12)

	// unknown subject & out-of-scale values are rejected
	for _, body := range []map[string]interface{}{
		{"subject": "magic", "value": 10},
		{"subject": student.SubjectLinux, "value": 21},
		{"subject": student.SubjectLinux, "value": -1},
	} {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+st.ID+"/grades", token, marchallObj(t, body))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	// detail rolls up the average and buckets the color
	req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+st.ID, token)
	app.ServeHTTP(rec, req)
	var detail student.Detail
	_ = json.Unmarshal(rec.Body.Bytes(), &detail)
	assert.Equal(t, float64(12), detail.Average)
	assert.Equal(t, student.GradeExcellent, detail.GradeColor)
	assert.Len(t, detail.Grades[student.SubjectJavaScript], 1)
	assert.Len(t, detail.Grades[student.SubjectBootstrap], 0)

	// delete a grade
	req, rec = newAuthRequest(http.MethodDelete, "/v1/students/"+st.ID+"/grades/"+g.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/students/"+st.ID+"/grades/"+g.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+st.ID, token)
	app.ServeHTTP(rec, req)
	_ = json.Unmarshal(rec.Body.Bytes(), &detail)
	assert.Equal(t, float64(12), detail.Average)
}

func Test_studentApi_comments(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	token := getToken(t, admin)

	st := createStudent(t, app, token, map[string]interface{}{"first_name": "Ada", "last_name": "Lovelace"})

	req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+st.ID+"/comments", token,
		marchallObj(t, map[string]interface{}{"content": "Bon travail.", "subject": student.SubjectDocker}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// content is required
	req, rec = newAuthRequest(http.MethodPost, "/v1/students/"+st.ID+"/comments", token,
		marchallObj(t, map[string]interface{}{"subject": student.SubjectDocker}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+st.ID+"/comments", token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var comments []student.Comment
	if err := json.Unmarshal(rec.Body.Bytes(), &comments); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if assert.Len(t, comments, 1) {
		assert.Equal(t, "Bon travail.", comments[0].Content)
		assert.Equal(t, student.SubjectDocker, comments[0].Subject.String)
	}
}

func Test_studentApi_avatar(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	token := getToken(t, admin)

	st := createStudent(t, app, token, map[string]interface{}{"first_name": "Ada", "last_name": "Lovelace"})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("avatar", "photo.png")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	_, _ = fw.Write([]byte("not-really-a-png"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPut, "/v1/students/"+st.ID+"/avatar", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var updated student.Student
	_ = json.Unmarshal(rec.Body.Bytes(), &updated)
	assert.Equal(t, "/media/students/"+st.ID+".png", updated.AvatarURL)
}
