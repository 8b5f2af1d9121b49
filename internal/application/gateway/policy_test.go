package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quzz-ai-api/internal/config"
	"quzz-ai-api/internal/domain/entity"
)

func rolesN(n int) []entity.RecommendedRole {
	out := make([]entity.RecommendedRole, n)
	for i := range out {
		out[i] = entity.RecommendedRole{Title: "r", Responsibilities: []string{"a"}, RequiredSkills: []string{"b"}}
	}
	return out
}

func TestRolePolicyFromConfigDefaultsToOff(t *testing.T) {
	p := RolePolicyFromConfig(config.RolePolicyConfig{})
	assert.Equal(t, PolicyOff, p.Mode)
	got, err := p.Apply(rolesN(9))
	require.NoError(t, err)
	assert.Len(t, got, 9)
}

func TestRolePolicyReject(t *testing.T) {
	p := RolePolicy{Mode: PolicyReject, MinRoles: 3, MaxRoles: 5, MaxSkills: 1}
	_, err := p.Apply(rolesN(2))
	assert.Error(t, err)
	_, err = p.Apply(rolesN(6))
	assert.Error(t, err)
	got, err := p.Apply(rolesN(4))
	require.NoError(t, err)
	assert.Len(t, got, 4)

	tooMany := rolesN(3)
	tooMany[1].RequiredSkills = []string{"x", "y"}
	_, err = p.Apply(tooMany)
	assert.Error(t, err)
}

func TestRolePolicyTruncateKeepsShortLists(t *testing.T) {
	p := RolePolicy{Mode: PolicyTruncate, MinRoles: 3, MaxRoles: 5}
	got, err := p.Apply(rolesN(2))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
