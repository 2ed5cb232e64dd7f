package routers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"techlearn/catalog"
	"techlearn/certificate"
	"techlearn/config"
	"techlearn/database"
	"techlearn/identity"
	"techlearn/logger"
	"techlearn/middleware"
	"techlearn/services"
	"techlearn/session"
	"techlearn/tutor"
	"techlearn/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupApp(t *testing.T, tutorURL string) *fiber.App {
	t.Helper()

	cfg := config.FromEnv()
	cfg.JWTKey = "test-secret"
	cfg.SendgridAPIKey = ""
	config.AppConfig = cfg

	cat, err := catalog.Load("")
	require.NoError(t, err)

	log := logger.Nop()
	kv := database.NewMemoryKV()
	services.App = &services.Container{
		Log:      log,
		Catalog:  cat,
		Sessions: session.NewRegistry(kv, cat, certificate.DefaultLimit, log),
		Accounts: identity.NewAccounts(identity.NewKVAccounts(kv), bcrypt.MinCost),
		Exporter: certificate.NewExporter(certificate.NewRenderer(certificate.NewFontRegistry(certificate.BuiltinFonts))),
		Tutor:    tutor.NewClient(tutorURL, "", "test-model", log),
		Mailer:   utils.NewMailer(cfg, log),
	}

	app := fiber.New()
	SetupRoutes(app)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

type loginData struct {
	Token    string `json:"token"`
	DeviceID string `json:"device_id"`
	User     struct {
		Email string `json:"email"`
	} `json:"user"`
}

func register(t *testing.T, app *fiber.App, email string) loginData {
	t.Helper()
	status, res := call(t, app, http.MethodPost, "/auth/register", "", fiber.Map{"email": email, "password": "password123"})
	require.Equal(t, fiber.StatusCreated, status, res.Message)

	var data loginData
	require.NoError(t, json.Unmarshal(res.Data, &data))
	require.NotEmpty(t, data.Token)
	return data
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t, "http://127.0.0.1:0")

	data := register(t, app, " Student@Example.com ")
	assert.Equal(t, "student@example.com", data.User.Email)
	assert.NotEmpty(t, data.DeviceID)

	status, res := call(t, app, http.MethodPost, "/auth/register", "", fiber.Map{"email": "student@example.com", "password": "password123"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "An account with this email already exists. Please log in.", res.Message)

	status, res = call(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"email": "nobody@example.com", "password": "password123"})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "No account found with this email. Please register first.", res.Message)

	status, _ = call(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"email": "student@example.com", "password": "wrong-password"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, res = call(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"email": "student@example.com", "password": "password123"})
	require.Equal(t, fiber.StatusOK, status)
	var login loginData
	require.NoError(t, json.Unmarshal(res.Data, &login))

	status, _ = call(t, app, http.MethodGet, "/auth/me", login.Token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, http.MethodPost, "/auth/logout", login.Token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, res = call(t, app, http.MethodGet, "/auth/me", login.Token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Session expired, please login again!", res.Message)
}

func TestAuthValidation(t *testing.T) {
	app := setupApp(t, "http://127.0.0.1:0")

	status, res := call(t, app, http.MethodPost, "/auth/register", "", fiber.Map{"email": "not-an-email", "password": "short"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	var errs map[string]string
	require.NoError(t, json.Unmarshal(res.Data, &errs))
	assert.Equal(t, "Invalid email!", errs["email"])
	assert.Equal(t, "Password must be at least 8 characters long!", errs["password"])

	status, _ = call(t, app, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	long := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 60) + "." + strings.Repeat("c", 60) + "." + strings.Repeat("d", 60) + ".eeeee.io"
	require.Greater(t, len(long), 254)
	status, res = call(t, app, http.MethodPost, "/auth/register", "", fiber.Map{"email": long, "password": "password123"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	errs = map[string]string{}
	require.NoError(t, json.Unmarshal(res.Data, &errs))
	assert.Contains(t, errs, "email")
	assert.NotContains(t, errs, "password")
}

func TestCatalogRoutes(t *testing.T) {
	app := setupApp(t, "http://127.0.0.1:0")

	status, res := call(t, app, http.MethodGet, "/course/list?category=Python", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list struct {
		Courses []struct {
			ID string `json:"id"`
		} `json:"courses"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "python-basics", list.Courses[0].ID)

	status, res = call(t, app, http.MethodGet, "/course/list", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(res.Data, &list))
	assert.Equal(t, 4, list.Total)

	status, res = call(t, app, http.MethodGet, "/course/filters", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var filters struct {
		Categories  []string `json:"categories"`
		Instructors []string `json:"instructors"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &filters))
	assert.Equal(t, []string{"Web Development", "Python", "Java", "Full Stack"}, filters.Categories)

	status, res = call(t, app, http.MethodGet, "/course/html-css-js", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(res.Data), "correct_answer")
	assert.NotContains(t, string(res.Data), "CorrectAnswerIndex")

	status, _ = call(t, app, http.MethodGet, "/course/unknown", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPublicListLeavesSessionFilterAlone(t *testing.T) {
	app := setupApp(t, "http://127.0.0.1:0")
	data := register(t, app, "filter@example.com")

	req := httptest.NewRequest(http.MethodGet, "/course/list?instructor=Dinesh", nil)
	req.Header.Set(middleware.DeviceHeader, data.DeviceID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	s, ok := services.App.Sessions.Get(data.DeviceID)
	require.True(t, ok)
	assert.Equal(t, catalog.Filter{}, s.Filter())
}

func TestBrowseRemembersSessionFilter(t *testing.T) {
	app := setupApp(t, "http://127.0.0.1:0")
	data := register(t, app, "browse@example.com")

	status, _ := call(t, app, http.MethodGet, "/course/browse?instructor=Dinesh", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/course/browse?instructor=Dinesh", data.Token, nil)
	require.Equal(t, fiber.StatusOK, status)

	s, ok := services.App.Sessions.Get(data.DeviceID)
	require.True(t, ok)
	assert.Equal(t, "Dinesh", s.Filter().Instructor)
}

func TestLearningFlow(t *testing.T) {
	app := setupApp(t, "http://127.0.0.1:0")
	token := register(t, app, "learner@example.com").Token
	const courseID = "html-css-js"

	status, _ := call(t, app, http.MethodPost, "/course/"+courseID+"/enroll", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/course/"+courseID+"/progress", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPost, "/course/unknown/enroll", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/course/"+courseID+"/enroll", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, res := call(t, app, http.MethodPost, "/course/"+courseID+"/enroll", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Already enrolled in this course.", res.Message)

	quizPath := "/course/" + courseID + "/module/html-1/quiz/submit"
	answers := fiber.Map{"answers": fiber.Map{"q1": 0, "q2": 1, "q3": 0}}

	status, _ = call(t, app, http.MethodPost, quizPath, token, answers)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPost, "/course/"+courseID+"/module/nope/exercise/complete", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/course/"+courseID+"/module/html-1/exercise/complete", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, http.MethodPost, quizPath, token, fiber.Map{"answers": fiber.Map{"q1": 0}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, res = call(t, app, http.MethodPost, quizPath, token, answers)
	require.Equal(t, fiber.StatusOK, status)
	var quiz struct {
		Score int `json:"score"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &quiz))
	assert.Equal(t, 3, quiz.Score)
	assert.Equal(t, 3, quiz.Total)

	status, res = call(t, app, http.MethodGet, "/course/"+courseID+"/progress", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var progress struct {
		Modules map[string]bool `json:"modules"`
		Quizzes map[string]struct {
			Score     int  `json:"score"`
			Completed bool `json:"completed"`
		} `json:"quizzes"`
		CompletionPercent int  `json:"completion_percent"`
		Completed         bool `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &progress))
	assert.Equal(t, map[string]bool{"html-1": true, "css-1": false, "js-1": false}, progress.Modules)
	assert.Equal(t, 3, progress.Quizzes["html-1"].Score)
	assert.True(t, progress.Quizzes["html-1"].Completed)
	assert.Equal(t, 33, progress.CompletionPercent)
	assert.False(t, progress.Completed)

	status, res = call(t, app, http.MethodGet, "/user/enrollments", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var enrollments struct {
		Enrollments []struct {
			CourseID          string `json:"course_id"`
			CompletionPercent int    `json:"completion_percent"`
		} `json:"enrollments"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &enrollments))
	require.Len(t, enrollments.Enrollments, 1)
	assert.Equal(t, courseID, enrollments.Enrollments[0].CourseID)
	assert.Equal(t, 33, enrollments.Enrollments[0].CompletionPercent)

	status, res = call(t, app, http.MethodGet, "/user/profile", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), `"email":"learner@example.com"`)
}

func TestCertificateFlow(t *testing.T) {
	app := setupApp(t, "http://127.0.0.1:0")
	token := register(t, app, "graduate@example.com").Token
	const courseID = "java-basics"
	certPath := "/course/" + courseID + "/certificate"

	status, _ := call(t, app, http.MethodPost, "/course/"+courseID+"/enroll", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, http.MethodPost, certPath, token, fiber.Map{"student_name": "Ada Lovelace"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	for _, moduleID := range []string{"java-1", "java-9"} {
		status, _ = call(t, app, http.MethodPost, "/course/"+courseID+"/module/"+moduleID+"/exercise/complete", token, nil)
		require.Equal(t, fiber.StatusOK, status)
	}

	status, _ = call(t, app, http.MethodGet, certPath+"/download", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, certPath, token, fiber.Map{"student_name": "   "})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	for i := 0; i < certificate.DefaultLimit; i++ {
		status, res := call(t, app, http.MethodPost, certPath, token, fiber.Map{"student_name": "Ada Lovelace"})
		require.Equal(t, fiber.StatusCreated, status, res.Message)
		var out struct {
			Certificate struct {
				StudentName string `json:"student_name"`
				CourseTitle string `json:"course_title"`
				Number      string `json:"certificate_number"`
			} `json:"certificate"`
			Remaining int `json:"remaining"`
		}
		require.NoError(t, json.Unmarshal(res.Data, &out))
		assert.Equal(t, "Ada Lovelace", out.Certificate.StudentName)
		assert.Regexp(t, `^TL-[0-9A-F]{12}$`, out.Certificate.Number)
		assert.Equal(t, certificate.DefaultLimit-i-1, out.Remaining)
	}

	status, res := call(t, app, http.MethodPost, certPath, token, fiber.Map{"student_name": "Ada Lovelace"})
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, fmt.Sprintf("You can only generate %d certificates per course!", certificate.DefaultLimit), res.Message)

	status, _ = call(t, app, http.MethodGet, certPath+"/download?template=fancy", token, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	req := httptest.NewRequest(http.MethodGet, certPath+"/download?template=classic", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "TechLearn_")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestTutorRoute(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Use a \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"semantic tag.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer upstream.Close()

	app := setupApp(t, upstream.URL)
	token := register(t, app, "curious@example.com").Token
	tutorPath := "/course/html-css-js/module/html-1/tutor"

	status, _ := call(t, app, http.MethodPost, tutorPath, token, fiber.Map{"message": "What is a div?"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPost, "/course/html-css-js/enroll", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, http.MethodPost, tutorPath, token, fiber.Map{"message": "  "})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, res := call(t, app, http.MethodPost, tutorPath, token, fiber.Map{
		"message": "What is a div?",
		"history": []fiber.Map{{"role": "model", "text": "Hi! Ask me anything."}},
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"reply":"Use a semantic tag."}`, string(res.Data))
}

func TestTutorRouteFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	app := setupApp(t, upstream.URL)
	token := register(t, app, "unlucky@example.com").Token
	status, _ := call(t, app, http.MethodPost, "/course/html-css-js/enroll", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, res := call(t, app, http.MethodPost, "/course/html-css-js/module/html-1/tutor", token, fiber.Map{"message": "Help"})
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, tutor.FallbackReply, res.Message)
}

func TestHealth(t *testing.T) {
	app := setupApp(t, "http://127.0.0.1:0")
	register(t, app, "health@example.com")

	status, res := call(t, app, http.MethodGet, "/health", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var stats session.Stats
	require.NoError(t, json.Unmarshal(res.Data, &stats))
	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, 1, stats.LoggedIn)
}
