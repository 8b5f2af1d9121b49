package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quzz-ai-api/internal/domain/entity"
	wfmodel "quzz-ai-api/internal/workflow/model"
	apperrors "quzz-ai-api/pkg/errors"
)

type fakeInvoker struct {
	raw   string
	err   error
	delay time.Duration
	calls int
	last  *wfmodel.StructuredGenerateInput
}

func (f *fakeInvoker) Invoke(ctx context.Context, in *wfmodel.StructuredGenerateInput) (*wfmodel.StructuredGenerateOutput, error) {
	f.calls++
	f.last = in
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &wfmodel.StructuredGenerateOutput{Raw: f.raw}, nil
}

func quzzTeam() entity.TeamData {
	return entity.NewTeamData("Quzz", "Quiz platform for students", []string{"Java", "Spring Boot", "MySQL"}, "")
}

const quzzBlueprint = `{
  "backend": {
    "directory": "src/main/java/com/project",
    "files": [
      {"name": "QuizService.java", "path": "src/main/java/com/project/service/QuizService.java", "content": "class QuizService {}"},
      {"name": "Quiz.java", "path": "src/main/java/com/project/model/Quiz.java", "content": "class Quiz {}"},
      {"name": "QuizController.java", "path": "src/main/java/com/project/controller/QuizController.java", "content": "class QuizController {}"}
    ]
  },
  "frontend": {
    "directory": "src",
    "files": [
      {"name": "App.jsx", "path": "src/App.jsx", "content": "export default App"},
      {"name": "api.js", "path": "src/api.js", "content": "export const get = () => {}"}
    ]
  },
  "database": {"schema": "CREATE TABLE quiz (id BIGINT PRIMARY KEY);"}
}`

func TestRecommendRolesPreservesOrder(t *testing.T) {
	roles := &fakeInvoker{raw: `[
	  {"title":"Backend Engineer","responsibilities":["APIs"],"requiredSkills":["Java"]},
	  {"title":"Database Engineer","responsibilities":["Schema"],"requiredSkills":["MySQL"]},
	  {"title":"Frontend Engineer","responsibilities":["UI"],"requiredSkills":["Spring Boot"]}
	]`}
	g := newGateway(roles, &fakeInvoker{}, Options{Provider: "gemini"})

	got := g.RecommendRoles(context.Background(), quzzTeam())
	require.Len(t, got, 3)
	assert.Equal(t, "Backend Engineer", got[0].Title)
	assert.Equal(t, "Database Engineer", got[1].Title)
	assert.Equal(t, "Frontend Engineer", got[2].Title)

	assert.Equal(t, "gemini", roles.last.Provider)
	assert.Equal(t, "Java, Spring Boot, MySQL", roles.last.Vars["tech_stack"])
	assert.Equal(t, "Quzz", roles.last.Vars["name"])
}

func TestRecommendRolesSoftFailures(t *testing.T) {
	cases := map[string]*fakeInvoker{
		"transport error": {err: errors.New("connection reset")},
		"invalid json":    {raw: `not json at all`},
		"object root":     {raw: `{"title":"x"}`},
		"timeout":         {raw: `[]`, delay: time.Second},
	}
	for name, inv := range cases {
		t.Run(name, func(t *testing.T) {
			g := newGateway(inv, &fakeInvoker{}, Options{RoleTimeout: 20 * time.Millisecond})
			got := g.RecommendRoles(context.Background(), quzzTeam())
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestRecommendRolesDropsMalformedItems(t *testing.T) {
	inv := &fakeInvoker{raw: `[
	  {"title":"QA","responsibilities":["tests"],"requiredSkills":["JUnit"]},
	  {"title":"Nameless","responsibilities":"not an array","requiredSkills":[]},
	  {"responsibilities":[],"requiredSkills":[]},
	  {"title":"Ops","responsibilities":[],"requiredSkills":["Docker"]}
	]`}
	got := newGateway(inv, &fakeInvoker{}, Options{}).RecommendRoles(context.Background(), quzzTeam())
	require.Len(t, got, 2)
	assert.Equal(t, "QA", got[0].Title)
	assert.Equal(t, "Ops", got[1].Title)
}

func TestRecommendRolesPolicy(t *testing.T) {
	raw := `[
	  {"title":"A","responsibilities":["1","2","3","4","5"],"requiredSkills":["x"]},
	  {"title":"B","responsibilities":["1"],"requiredSkills":["x"]}
	]`

	off := newGateway(&fakeInvoker{raw: raw}, &fakeInvoker{}, Options{})
	assert.Len(t, off.RecommendRoles(context.Background(), quzzTeam()), 2)

	truncate := newGateway(&fakeInvoker{raw: raw}, &fakeInvoker{}, Options{RolePolicy: RolePolicy{
		Mode: PolicyTruncate, MinRoles: 3, MaxRoles: 1, MaxResponsibilities: 4, MaxSkills: 4,
	}})
	got := truncate.RecommendRoles(context.Background(), quzzTeam())
	require.Len(t, got, 1)
	assert.Len(t, got[0].Responsibilities, 4)

	reject := newGateway(&fakeInvoker{raw: raw}, &fakeInvoker{}, Options{RolePolicy: RolePolicy{
		Mode: PolicyReject, MinRoles: 3, MaxRoles: 5,
	}})
	assert.Empty(t, reject.RecommendRoles(context.Background(), quzzTeam()))
}

func TestGenerateBlueprintSuccess(t *testing.T) {
	inv := &fakeInvoker{raw: quzzBlueprint}
	bp, err := newGateway(&fakeInvoker{}, inv, Options{}).GenerateBlueprint(context.Background(), quzzTeam())
	require.NoError(t, err)

	assert.Equal(t, "src/main/java/com/project", bp.Backend.Directory)
	require.Len(t, bp.Backend.Files, 3)
	assert.Equal(t, "QuizService.java", bp.Backend.Files[0].Name)
	assert.Equal(t, "Quiz.java", bp.Backend.Files[1].Name)
	assert.Equal(t, "QuizController.java", bp.Backend.Files[2].Name)
	require.Len(t, bp.Frontend.Files, 2)
	assert.Equal(t, "src/App.jsx", bp.Frontend.Files[0].Path)
	assert.Contains(t, bp.Database.Schema, "CREATE TABLE quiz")
	assert.Equal(t, 1, inv.calls)
}

func TestGenerateBlueprintHardFailures(t *testing.T) {
	cases := map[string]*fakeInvoker{
		"transport error":  {err: errors.New("503 unavailable")},
		"invalid json":     {raw: `{"backend":`},
		"missing database": {raw: `{"backend":{},"frontend":{}}`},
		"files not array":  {raw: `{"backend":{"files":{}},"frontend":{},"database":{}}`},
		"wrong string":     {raw: `{"backend":{"directory":7},"frontend":{},"database":{}}`},
		"timeout":          {raw: quzzBlueprint, delay: time.Second},
	}
	for name, inv := range cases {
		t.Run(name, func(t *testing.T) {
			g := newGateway(&fakeInvoker{}, inv, Options{BlueprintTimeout: 20 * time.Millisecond})
			bp, err := g.GenerateBlueprint(context.Background(), quzzTeam())
			require.Error(t, err)
			assert.Nil(t, bp)
			assert.ErrorIs(t, err, ErrBlueprintGenerationFailed)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeGenerationFailed))
			assert.Equal(t, "blueprint generation failed", apperrors.AsAppError(err).Message)
		})
	}
}

func TestGenerateBlueprintDefaultsMissingStrings(t *testing.T) {
	inv := &fakeInvoker{raw: `{"backend":{"files":[{"name":"main.py"}]},"frontend":{},"database":{}}`}
	bp, err := newGateway(&fakeInvoker{}, inv, Options{}).GenerateBlueprint(context.Background(), quzzTeam())
	require.NoError(t, err)
	assert.Equal(t, "", bp.Backend.Directory)
	require.Len(t, bp.Backend.Files, 1)
	assert.Equal(t, "main.py", bp.Backend.Files[0].Name)
	assert.Equal(t, "", bp.Backend.Files[0].Content)
	assert.NotNil(t, bp.Frontend.Files)
	assert.Equal(t, "", bp.Database.Schema)
}
