package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quzz-ai-api/internal/application/wizard"
	"quzz-ai-api/internal/config"
	"quzz-ai-api/internal/domain/entity"
	"quzz-ai-api/internal/infrastructure/persistence/memory"
	"quzz-ai-api/internal/interfaces/http/dto"
	"quzz-ai-api/internal/interfaces/http/handler"
	"quzz-ai-api/internal/interfaces/http/middleware"
	apperrors "quzz-ai-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGateway struct {
	roles     []entity.RecommendedRole
	blueprint *entity.TechnicalBlueprint
	err       error
	genCalls  int
}

func (g *stubGateway) GenerateBlueprint(_ context.Context, _ entity.TeamData) (*entity.TechnicalBlueprint, error) {
	g.genCalls++
	if g.err != nil {
		return nil, g.err
	}
	bp := g.blueprint.Clone()
	return &bp, nil
}

func (g *stubGateway) RecommendRoles(_ context.Context, _ entity.TeamData) []entity.RecommendedRole {
	return entity.CloneRoles(g.roles)
}

type stubLimiter struct {
	allow bool
	keys  []string
}

func (l *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "quzz-ai-api"
	cfg.App.Env = "test"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	cfg.Wizard.KeyPrefix = "quzz:wizard"
	return cfg
}

func newTestRouter(cfg *config.Config, gw *stubGateway, limiter *stubLimiter) *gin.Engine {
	svc := wizard.NewService(memory.NewSessionStore(), memory.NewSessionLocker(), gw, nil, wizard.ServiceOptions{SessionTTL: time.Hour})
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(nil, "test"),
		Catalog: handler.NewCatalogHandler(),
		Wizard:  handler.NewWizardHandler(svc),
	}
	var rl middleware.RateLimiter
	if limiter != nil {
		rl = limiter
	}
	return New(cfg, handlers, rl).Engine()
}

func do(t *testing.T, e *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp dto.Response[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

var quzzTeam = map[string]any{
	"name":        "Quzz",
	"goal":        "Build an online quiz platform",
	"tech_stack":  []string{"Java", "Spring Boot", "MySQL"},
	"description": "Realtime quizzes for classrooms",
}

func quzzGateway() *stubGateway {
	return &stubGateway{
		roles: []entity.RecommendedRole{
			{Title: "Backend Engineer", Responsibilities: []string{"APIs"}, RequiredSkills: []string{"Java", "Spring Boot"}},
			{Title: "Database Engineer", Responsibilities: []string{"Schema"}, RequiredSkills: []string{"MySQL"}},
			{Title: "QA Engineer", Responsibilities: []string{"Tests"}, RequiredSkills: []string{"Java"}},
		},
		blueprint: &entity.TechnicalBlueprint{
			Backend: entity.Scaffold{
				Directory: "src/main/java/com/project",
				Files:     []entity.ScaffoldFile{{Name: "QuizService.java", Path: "src/main/java/com/project/service/QuizService.java", Content: "class QuizService {}"}},
			},
			Frontend: entity.Scaffold{Directory: "src", Files: []entity.ScaffoldFile{{Name: "App.jsx", Path: "src/App.jsx", Content: "export default App"}}},
			Database: entity.DatabaseSpec{Schema: "CREATE TABLE quiz (id BIGINT PRIMARY KEY);"},
		},
	}
}

func TestWizardFlowOverHTTP(t *testing.T) {
	gw := quzzGateway()
	e := newTestRouter(testConfig(), gw, nil)

	w := do(t, e, http.MethodPost, "/v1/wizard/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	sess := decode[dto.SessionResponse](t, w)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "LANDING", sess.Step)
	base := "/v1/wizard/sessions/" + sess.ID

	w = do(t, e, http.MethodPost, base+"/team", quzzTeam)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, e, http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CREATE_TEAM", decode[dto.SessionResponse](t, w).Step)

	w = do(t, e, http.MethodPost, base+"/team", map[string]any{"goal": "g", "tech_stack": []string{"Go"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, e, http.MethodPost, base+"/team", quzzTeam)
	require.Equal(t, http.StatusOK, w.Code)
	sess = decode[dto.SessionResponse](t, w)
	assert.Equal(t, "ROLE_RECO", sess.Step)
	assert.Equal(t, 2, sess.StepNumber)
	assert.Equal(t, []string{"Java", "Spring Boot", "MySQL"}, sess.Team.TechStack)

	w = do(t, e, http.MethodPost, base+"/role-recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reco := decode[dto.RoleRecommendationResponse](t, w)
	require.Len(t, reco.Roles, 3)

	w = do(t, e, http.MethodPost, base+"/roles", map[string]any{"roles": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, e, http.MethodGet, base+"/blueprint", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, e, http.MethodPost, base+"/roles", map[string]any{"roles": reco.Roles})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "TEMPLATE", decode[dto.SessionResponse](t, w).Step)

	w = do(t, e, http.MethodPost, base+"/template", map[string]any{"structure": "hexagonal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	template := map[string]any{"structure": "atomic", "conventions": []string{"eslint"}}
	gw.err = apperrors.ErrGenerationFailed.WithError(errors.New("503 unavailable"))
	w = do(t, e, http.MethodPost, base+"/template", template)
	require.Equal(t, http.StatusBadGateway, w.Code)
	errResp := decodeError(t, w)
	assert.Equal(t, "blueprint generation failed", errResp.Message)
	require.NotNil(t, errResp.Error)
	assert.True(t, errResp.Error.Retryable)
	assert.Equal(t, string(apperrors.CodeGenerationFailed), errResp.Error.ErrorCode)

	w = do(t, e, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sess = decode[dto.SessionResponse](t, w)
	assert.Equal(t, "TEMPLATE", sess.Step)
	assert.False(t, sess.Generating)
	assert.Nil(t, sess.Blueprint)

	gw.err = nil
	w = do(t, e, http.MethodPost, base+"/template", template)
	require.Equal(t, http.StatusOK, w.Code)
	sess = decode[dto.SessionResponse](t, w)
	assert.Equal(t, "DASHBOARD", sess.Step)
	assert.Equal(t, 4, sess.StepNumber)

	w = do(t, e, http.MethodGet, base+"/blueprint", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bp := decode[dto.BlueprintResponse](t, w)
	assert.Equal(t, "Quzz", bp.Team.Name)
	assert.Len(t, bp.Roles, 3)
	assert.Equal(t, "atomic", bp.Template.Structure)
	assert.Equal(t, []string{"eslint"}, bp.Template.Conventions)
	assert.Equal(t, "src/main/java/com/project", bp.TechSpec.Backend.Directory)

	w = do(t, e, http.MethodGet, base+"/blueprint/backend", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tab := decode[struct {
		Tab  string          `json:"tab"`
		Data dto.ScaffoldDTO `json:"data"`
	}](t, w)
	assert.Equal(t, "backend", tab.Tab)
	require.Len(t, tab.Data.Files, 1)
	assert.Equal(t, "QuizService.java", tab.Data.Files[0].Name)

	w = do(t, e, http.MethodGet, base+"/blueprint/deploy", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, e, http.MethodPost, base+"/template", template)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 2, gw.genCalls)

	w = do(t, e, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, e, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDefaultTemplateWhenBodyEmpty(t *testing.T) {
	gw := quzzGateway()
	e := newTestRouter(testConfig(), gw, nil)

	sess := decode[dto.SessionResponse](t, do(t, e, http.MethodPost, "/v1/wizard/sessions", nil))
	base := "/v1/wizard/sessions/" + sess.ID
	require.Equal(t, http.StatusOK, do(t, e, http.MethodPost, base+"/start", nil).Code)
	require.Equal(t, http.StatusOK, do(t, e, http.MethodPost, base+"/team", quzzTeam).Code)
	require.Equal(t, http.StatusOK, do(t, e, http.MethodPost, base+"/roles", map[string]any{
		"roles": []map[string]any{{"title": "Developer"}},
	}).Code)

	w := do(t, e, http.MethodPost, base+"/template", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sess = decode[dto.SessionResponse](t, w)
	require.NotNil(t, sess.Template)
	assert.Equal(t, "atomic", sess.Template.Structure)
	assert.Equal(t, []string{"eslint", "prettier"}, sess.Template.Conventions)
}

func TestUnknownSession(t *testing.T) {
	e := newTestRouter(testConfig(), quzzGateway(), nil)

	w := do(t, e, http.MethodGet, "/v1/wizard/sessions/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	errResp := decodeError(t, w)
	require.NotNil(t, errResp.Error)
	assert.Equal(t, string(apperrors.CodeSessionNotFound), errResp.Error.ErrorCode)
	assert.False(t, errResp.Error.Retryable)
}

func TestCatalog(t *testing.T) {
	e := newTestRouter(testConfig(), quzzGateway(), nil)

	w := do(t, e, http.MethodGet, "/v1/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cat := decode[dto.CatalogResponse](t, w)
	assert.Len(t, cat.TechStack, len(entity.TechCatalog))
	assert.Len(t, cat.Structures, 3)
	assert.Equal(t, "atomic", cat.DefaultTemplate.Structure)
	assert.Equal(t, []string{"roles", "backend", "frontend", "database"}, cat.DashboardTabs)
}

func TestSystemEndpoints(t *testing.T) {
	e := newTestRouter(testConfig(), quzzGateway(), nil)

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		w := do(t, e, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	w := do(t, e, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRateLimitOnGenerationEndpoints(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.Requests = 1
	cfg.Security.RateLimit.Window = time.Minute
	limiter := &stubLimiter{allow: false}
	e := newTestRouter(cfg, quzzGateway(), limiter)

	sess := decode[dto.SessionResponse](t, do(t, e, http.MethodPost, "/v1/wizard/sessions", nil))

	w := do(t, e, http.MethodPost, "/v1/wizard/sessions/"+sess.ID+"/role-recommendations", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	errResp := decodeError(t, w)
	require.NotNil(t, errResp.Error)
	assert.True(t, errResp.Error.Retryable)

	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "quzz:wizard:ratelimit:192.0.2.1:/v1/wizard/sessions/:sid/role-recommendations", limiter.keys[0])

	w = do(t, e, http.MethodGet, "/v1/wizard/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, limiter.keys, 1)
}
