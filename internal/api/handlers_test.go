package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/domain"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/persistence/memory"
)

var fixedNow = time.Date(2024, time.March, 5, 15, 4, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (http.Handler, *domain.Service) {
	t.Helper()
	repo := memory.NewRepository()
	service := domain.NewService(repo, nil, domain.WithClock(func() time.Time { return fixedNow }))
	handler := NewHandler(service, repo, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, service
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestCreateUserThenListIncludesItOnce(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := postForm(t, router, "/api/users", url.Values{"username": {"fcc_test"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var created UserView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "fcc_test", created.Username)
	require.NotEmpty(t, created.ID)
	require.NotEqual(t, created.Username, created.ID)

	rr = get(t, router, "/api/users")
	require.Equal(t, http.StatusOK, rr.Code)

	var users []UserView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	matches := 0
	for _, u := range users {
		if u.ID == created.ID {
			matches++
			require.Equal(t, "fcc_test", u.Username)
		}
	}
	require.Equal(t, 1, matches)
}

func TestCreateUserAcceptsJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"username":"json_user"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"username":"json_user"`)
}

func TestCreateUserRequiresUsername(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := postForm(t, router, "/api/users", url.Values{"username": {"   "}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "username is required")
}

func TestListUsersEmptyIsArray(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := get(t, router, "/api/users")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[]`, rr.Body.String())
}

func TestAddExerciseShapesResponse(t *testing.T) {
	router, service := newTestRouter(t)
	user, err := service.CreateUser(context.Background(), "runner")
	require.NoError(t, err)

	rr := postForm(t, router, "/api/users/"+user.ID+"/exercises", url.Values{
		"description": {"test"},
		"duration":    {"60"},
		"date":        {"1990-01-01"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body ExerciseView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, ExerciseView{
		UserID:      user.ID,
		Username:    "runner",
		Date:        "Mon Jan 01 1990",
		Duration:    60,
		Description: "test",
	}, body)
}

func TestAddExerciseDefaultsDateToToday(t *testing.T) {
	router, service := newTestRouter(t)
	user, err := service.CreateUser(context.Background(), "runner")
	require.NoError(t, err)

	rr := postForm(t, router, "/api/users/"+user.ID+"/exercises", url.Values{
		"description": {"walk"},
		"duration":    {"15"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body ExerciseView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Tue Mar 05 2024", body.Date)
}

func TestAddExerciseAcceptsJSONNumberDuration(t *testing.T) {
	router, service := newTestRouter(t)
	user, err := service.CreateUser(context.Background(), "swimmer")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/users/"+user.ID+"/exercises",
		strings.NewReader(`{"description":"laps","duration":45,"date":"2024-02-29"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"duration":45`)
	require.Contains(t, rr.Body.String(), `"date":"Thu Feb 29 2024"`)
}

func TestAddExerciseValidation(t *testing.T) {
	router, service := newTestRouter(t)
	user, err := service.CreateUser(context.Background(), "runner")
	require.NoError(t, err)

	cases := map[string]url.Values{
		"missing description": {"duration": {"10"}},
		"missing duration":    {"description": {"run"}},
		"non-numeric":         {"description": {"run"}, "duration": {"ten"}},
		"bad date":            {"description": {"run"}, "duration": {"10"}, "date": {"yesterday"}},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			rr := postForm(t, router, "/api/users/"+user.ID+"/exercises", form)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestAddExerciseUnknownUser(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := postForm(t, router, "/api/users/does-not-exist/exercises", url.Values{
		"description": {"run"},
		"duration":    {"10"},
	})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"type":"not_found","detail":"user not found"}`, rr.Body.String())
}

func TestGetLogsFiltersByDateRange(t *testing.T) {
	router, service := newTestRouter(t)
	ctx := context.Background()
	user, err := service.CreateUser(ctx, "logger")
	require.NoError(t, err)

	for _, date := range []string{"2023-01-01", "2023-06-15", "2023-12-31"} {
		_, err := service.AddExercise(ctx, domain.AddExerciseInput{
			UserID: user.ID, Description: "session " + date, Duration: "30", Date: date,
		})
		require.NoError(t, err)
	}

	rr := get(t, router, "/api/users/"+user.ID+"/logs?from=2023-06-01&to=2023-12-01")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body LogView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, user.ID, body.UserID)
	require.Equal(t, "logger", body.Username)
	require.Equal(t, 1, body.Count)
	require.Equal(t, []LogItemView{{Description: "session 2023-06-15", Duration: 30, Date: "Thu Jun 15 2023"}}, body.Log)
}

func TestGetLogsLimitKeepsInsertionOrder(t *testing.T) {
	router, service := newTestRouter(t)
	ctx := context.Background()
	user, err := service.CreateUser(ctx, "limiter")
	require.NoError(t, err)

	for _, desc := range []string{"a", "b", "c", "d", "e"} {
		_, err := service.AddExercise(ctx, domain.AddExerciseInput{UserID: user.ID, Description: desc, Duration: "5", Date: "2024-01-01"})
		require.NoError(t, err)
	}

	rr := get(t, router, "/api/users/"+user.ID+"/logs?limit=2")
	require.Equal(t, http.StatusOK, rr.Code)

	var body LogView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	require.Len(t, body.Log, 2)
	require.Equal(t, "a", body.Log[0].Description)
	require.Equal(t, "b", body.Log[1].Description)
}

func TestGetLogsRejectsInvalidQuery(t *testing.T) {
	router, service := newTestRouter(t)
	user, err := service.CreateUser(context.Background(), "strict")
	require.NoError(t, err)

	for _, query := range []string{"from=soon", "to=2023-13-45", "limit=two", "limit=-1"} {
		rr := get(t, router, "/api/users/"+user.ID+"/logs?"+query)
		require.Equal(t, http.StatusBadRequest, rr.Code, query)
	}
}

func TestGetLogsUnknownUser(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := get(t, router, "/api/users/missing/logs")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLandingPageAndAssets(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := get(t, router, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rr.Body.String(), "Exercise tracker")

	rr = get(t, router, "/style.css")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "text/css")

	rr = get(t, router, "/missing.js")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateUserRejectsOversizedJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"username":"` + strings.Repeat("a", maxFormMemory) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = get(t, router, "/api/users")
	require.JSONEq(t, `[]`, rr.Body.String())
}

func TestReadyzReportsStoreFailure(t *testing.T) {
	service := domain.NewService(memory.NewRepository(), nil)
	handler := NewHandler(service, failingPinger{}, nil)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	rr := get(t, r, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = get(t, r, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestStoreErrorsBecomeServerErrors(t *testing.T) {
	service := domain.NewService(brokenRepo{}, nil)
	handler := NewHandler(service, nil, nil)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	rr := get(t, r, "/api/users")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "server_error")
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type brokenRepo struct{}

var errBroken = errors.New("store unavailable")

func (brokenRepo) CreateUser(context.Context, string) (domain.User, error) {
	return domain.User{}, errBroken
}

func (brokenRepo) ListUsers(context.Context) ([]domain.User, error) { return nil, errBroken }

func (brokenRepo) GetUser(context.Context, string) (*domain.User, error) { return nil, errBroken }

func (brokenRepo) CreateExercise(context.Context, domain.Exercise) (domain.Exercise, error) {
	return domain.Exercise{}, errBroken
}

func (brokenRepo) ListExercisesByUser(context.Context, string) ([]domain.Exercise, error) {
	return nil, errBroken
}
