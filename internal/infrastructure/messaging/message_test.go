package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quzz-ai-api/internal/domain/entity"
)

func TestNewWizardCompletedMessage(t *testing.T) {
	sess := entity.NewWizardSession("s-42", time.Now())
	sess.State.Step = entity.StepDashboard
	sess.State.Blueprint = &entity.ProjectBlueprint{
		Team:     entity.NewTeamData("Quzz", "Quiz", []string{"Java", "MySQL"}, ""),
		Roles:    []entity.RecommendedRole{{Title: "Backend Engineer"}, {Title: "DBA"}},
		Template: entity.TemplateChoice{Structure: entity.StructureAtomic, Conventions: []string{"eslint"}},
		TechSpec: entity.TechnicalBlueprint{
			Backend: entity.Scaffold{Files: []entity.ScaffoldFile{{Name: "A.java"}, {Name: "B.java"}}},
		},
	}

	msg, err := NewWizardCompletedMessage(sess)
	require.NoError(t, err)
	assert.Equal(t, TypeWizardCompleted, msg.Type)
	assert.Equal(t, "s-42", msg.SessionID)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "DASHBOARD", msg.Metadata["step"])

	var payload WizardCompletedPayload
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, "Quzz", payload.TeamName)
	assert.Equal(t, []string{"Backend Engineer", "DBA"}, payload.Roles)
	assert.Equal(t, "atomic", payload.Structure)
	assert.Equal(t, 2, payload.BackendFiles)
	assert.Equal(t, 0, payload.FrontendFiles)
}

func TestNewWizardCompletedMessageRequiresBlueprint(t *testing.T) {
	_, err := NewWizardCompletedMessage(entity.NewWizardSession("s", time.Now()))
	assert.Error(t, err)
}
