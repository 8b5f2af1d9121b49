package gateway

import (
	"fmt"

	"quzz-ai-api/internal/config"
	"quzz-ai-api/internal/domain/entity"
)

// PolicyMode 角色数量约束的执行方式
type PolicyMode string

const (
	// PolicyOff 原样接受模型返回
	PolicyOff PolicyMode = "off"
	// PolicyTruncate 超出上限的部分被截掉
	PolicyTruncate PolicyMode = "truncate"
	// PolicyReject 越界即视为失败
	PolicyReject PolicyMode = "reject"
)

// RolePolicy 提示词要求 3-5 个角色、每项 3-4 条；模型不保证遵守
type RolePolicy struct {
	Mode                PolicyMode
	MinRoles            int
	MaxRoles            int
	MaxResponsibilities int
	MaxSkills           int
}

// RolePolicyFromConfig 0 表示不限制
func RolePolicyFromConfig(cfg config.RolePolicyConfig) RolePolicy {
	mode := PolicyMode(cfg.Mode)
	if mode == "" {
		mode = PolicyOff
	}
	return RolePolicy{
		Mode:                mode,
		MinRoles:            cfg.MinRoles,
		MaxRoles:            cfg.MaxRoles,
		MaxResponsibilities: cfg.MaxResponsibilities,
		MaxSkills:           cfg.MaxSkills,
	}
}

// Apply 按模式处理角色列表。truncate 模式下角色数不足下限时不报错。
func (p RolePolicy) Apply(roles []entity.RecommendedRole) ([]entity.RecommendedRole, error) {
	switch p.Mode {
	case PolicyTruncate:
		out := roles
		if p.MaxRoles > 0 && len(out) > p.MaxRoles {
			out = out[:p.MaxRoles]
		}
		for i := range out {
			out[i].Responsibilities = capStrings(out[i].Responsibilities, p.MaxResponsibilities)
			out[i].RequiredSkills = capStrings(out[i].RequiredSkills, p.MaxSkills)
		}
		return out, nil
	case PolicyReject:
		if n := len(roles); n < p.MinRoles || (p.MaxRoles > 0 && n > p.MaxRoles) {
			return nil, fmt.Errorf("role count %d outside [%d, %d]", n, p.MinRoles, p.MaxRoles)
		}
		for i, r := range roles {
			if p.MaxResponsibilities > 0 && len(r.Responsibilities) > p.MaxResponsibilities {
				return nil, fmt.Errorf("role %d has %d responsibilities, max %d", i, len(r.Responsibilities), p.MaxResponsibilities)
			}
			if p.MaxSkills > 0 && len(r.RequiredSkills) > p.MaxSkills {
				return nil, fmt.Errorf("role %d has %d skills, max %d", i, len(r.RequiredSkills), p.MaxSkills)
			}
		}
		return roles, nil
	default:
		return roles, nil
	}
}

func capStrings(in []string, max int) []string {
	if max <= 0 || len(in) <= max {
		return in
	}
	return in[:max]
}
