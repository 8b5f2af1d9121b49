package wizard

import (
	"context"
	"errors"
	"sync"

	"quzz-ai-api/internal/domain/entity"
	apperrors "quzz-ai-api/pkg/errors"
)

var errGen = apperrors.ErrGenerationFailed.WithError(errors.New("503 unavailable"))

// fakeGateway 记录调用次数，可选阻塞直到 release 关闭
type fakeGateway struct {
	mu        sync.Mutex
	roles     []entity.RecommendedRole
	blueprint *entity.TechnicalBlueprint
	err       error
	genCalls  int
	roleCalls int
	lastTeam  entity.TeamData
	entered   chan struct{}
	release   chan struct{}
}

func (g *fakeGateway) GenerateBlueprint(ctx context.Context, team entity.TeamData) (*entity.TechnicalBlueprint, error) {
	g.mu.Lock()
	g.genCalls++
	g.lastTeam = team
	g.mu.Unlock()
	g.wait()
	if err := ctx.Err(); err != nil {
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}
	if g.err != nil {
		return nil, g.err
	}
	bp := g.blueprint.Clone()
	return &bp, nil
}

func (g *fakeGateway) RecommendRoles(_ context.Context, _ entity.TeamData) []entity.RecommendedRole {
	g.mu.Lock()
	g.roleCalls++
	g.mu.Unlock()
	g.wait()
	return entity.CloneRoles(g.roles)
}

func (g *fakeGateway) wait() {
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
}

func (g *fakeGateway) calls() (gen, roles int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.genCalls, g.roleCalls
}

func quzzTeam() entity.TeamData {
	return entity.NewTeamData("Quzz", "Build an online quiz platform", []string{"Java", "Spring Boot", "MySQL"}, "Realtime quizzes for classrooms")
}

func quzzRoles() []entity.RecommendedRole {
	return []entity.RecommendedRole{
		{Title: "Backend Engineer", Responsibilities: []string{"Design REST APIs"}, RequiredSkills: []string{"Java", "Spring Boot"}},
		{Title: "Database Engineer", Responsibilities: []string{"Model quiz schema"}, RequiredSkills: []string{"MySQL"}},
		{Title: "QA Engineer", Responsibilities: []string{"Write integration tests"}, RequiredSkills: []string{"Java"}},
	}
}

func quzzTechSpec() *entity.TechnicalBlueprint {
	return &entity.TechnicalBlueprint{
		Backend: entity.Scaffold{
			Directory: "src/main/java/com/project",
			Files: []entity.ScaffoldFile{
				{Name: "QuizService.java", Path: "src/main/java/com/project/service/QuizService.java", Content: "class QuizService {}"},
				{Name: "Quiz.java", Path: "src/main/java/com/project/model/Quiz.java", Content: "class Quiz {}"},
			},
		},
		Frontend: entity.Scaffold{
			Directory: "src",
			Files:     []entity.ScaffoldFile{{Name: "App.jsx", Path: "src/App.jsx", Content: "export default App"}},
		},
		Database: entity.DatabaseSpec{Schema: "CREATE TABLE quiz (id BIGINT PRIMARY KEY);"},
	}
}

func atomicESLint() entity.TemplateChoice {
	return entity.TemplateChoice{Structure: entity.StructureAtomic, Conventions: []string{"eslint"}}
}
