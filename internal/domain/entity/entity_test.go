package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamDataValidate(t *testing.T) {
	ok := NewTeamData("Quzz", "MSA backend", []string{"Java"}, "")
	require.NoError(t, ok.Validate())

	err := NewTeamData(" ", "", nil, "").Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTeamNameRequired)
	assert.ErrorIs(t, err, ErrTeamGoalRequired)
	assert.ErrorIs(t, err, ErrTechStackRequired)

	blankStack := TeamData{Name: "a", Goal: "b", TechStack: []string{"", "  "}}
	assert.ErrorIs(t, blankStack.Validate(), ErrTechStackRequired)
}

func TestNormalizeTechStackKeepsSelectionOrder(t *testing.T) {
	got := NormalizeTechStack([]string{"MySQL", "Java", " MySQL ", "", "Spring Boot", "Java"})
	assert.Equal(t, []string{"MySQL", "Java", "Spring Boot"}, got)
}

func TestTeamDataCloneIsIndependent(t *testing.T) {
	orig := NewTeamData("Quzz", "goal", []string{"Go", "Redis"}, "desc")
	cp := orig.Clone()
	cp.TechStack[0] = "Rust"
	assert.Equal(t, "Go", orig.TechStack[0])
	assert.Equal(t, "Go, Redis", orig.TechStackLine())
}

func TestNewTemplateChoice(t *testing.T) {
	c, err := NewTemplateChoice("Feature", []string{"gitflow", "eslint", "gitflow"})
	require.NoError(t, err)
	assert.Equal(t, StructureFeature, c.Structure)
	assert.Equal(t, []string{"gitflow", "eslint"}, c.Conventions)

	_, err = NewTemplateChoice("hexagonal", nil)
	assert.Error(t, err)

	_, err = NewTemplateChoice("atomic", []string{"tabs-over-spaces"})
	assert.Error(t, err)

	def := DefaultTemplateChoice()
	assert.Equal(t, StructureAtomic, def.Structure)
	assert.Equal(t, []string{"eslint", "prettier"}, def.Conventions)
	for _, id := range def.Conventions {
		assert.True(t, IsKnownConvention(id), id)
	}
}

func TestStepOrder(t *testing.T) {
	assert.Equal(t, 0, StepLanding.Number())
	assert.Equal(t, 4, StepDashboard.Number())
	assert.Equal(t, -1, Step("NOPE").Number())

	next, ok := StepRoleReco.Next()
	require.True(t, ok)
	assert.Equal(t, StepTemplate, next)

	_, ok = StepDashboard.Next()
	assert.False(t, ok)

	s, ok := ParseStep("role_reco")
	require.True(t, ok)
	assert.Equal(t, StepRoleReco, s)
}

func TestProjectBlueprintTabs(t *testing.T) {
	bp := ProjectBlueprint{
		Roles: []RecommendedRole{{Title: "Backend Engineer"}},
		TechSpec: TechnicalBlueprint{
			Backend:  Scaffold{Directory: "src/main/java", Files: []ScaffoldFile{{Name: "App.java"}}},
			Frontend: Scaffold{Directory: "web"},
			Database: DatabaseSpec{Schema: "CREATE TABLE t (id INT);"},
		},
	}

	roles, err := bp.Tab(TabRoles)
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	backend, err := bp.Tab(TabBackend)
	require.NoError(t, err)
	assert.Equal(t, "src/main/java", backend.(Scaffold).Directory)

	db, err := bp.Tab(TabDatabase)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE t (id INT);", db.(DatabaseSpec).Schema)

	_, err = bp.Tab("settings")
	assert.Error(t, err)
}

func TestTechCatalog(t *testing.T) {
	assert.Len(t, TechCatalog, 32)
	assert.True(t, IsKnownTech("Spring Boot"))
	assert.False(t, IsKnownTech("COBOL"))
}

func TestWizardStateCloneIsDeep(t *testing.T) {
	team := NewTeamData("Quzz", "Quiz", []string{"Java"}, "")
	started := time.Now()
	st := WizardState{
		Step:                StepDashboard,
		GenerationStartedAt: &started,
		Team:                &team,
		Roles:               []RecommendedRole{{Title: "Dev", RequiredSkills: []string{"Java"}}},
		Blueprint: &ProjectBlueprint{
			Team:     team,
			TechSpec: TechnicalBlueprint{Backend: Scaffold{Files: []ScaffoldFile{{Name: "A.java"}}}},
		},
	}

	cp := st.Clone()
	cp.Team.TechStack[0] = "Go"
	cp.Roles[0].RequiredSkills[0] = "Go"
	cp.Blueprint.TechSpec.Backend.Files[0].Name = "B.go"
	*cp.GenerationStartedAt = started.Add(time.Hour)

	assert.Equal(t, "Java", st.Team.TechStack[0])
	assert.Equal(t, "Java", st.Roles[0].RequiredSkills[0])
	assert.Equal(t, "A.java", st.Blueprint.TechSpec.Backend.Files[0].Name)
	assert.Equal(t, started, *st.GenerationStartedAt)
}

func TestNewTeamDataKeepsInputVerbatim(t *testing.T) {
	stack := []string{"Java", "Java", " MySQL"}
	team := NewTeamData(" Quzz ", "MSA backend", stack, "  x")

	assert.Equal(t, " Quzz ", team.Name)
	assert.Equal(t, "  x", team.Description)
	assert.Equal(t, []string{"Java", "Java", " MySQL"}, team.TechStack)

	stack[0] = "Go"
	assert.Equal(t, "Java", team.TechStack[0])
	require.NoError(t, team.Validate())
}

func TestWizardStateJSONKeepsEmptyRoles(t *testing.T) {
	team := NewTeamData("Quzz", "Quiz", []string{"Java"}, "")
	st := WizardState{Step: StepTemplate, Team: &team, Roles: []RecommendedRole{}}

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"roles":[]`)

	var back WizardState
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.NotNil(t, back.Roles)
	assert.Empty(t, back.Roles)
}
