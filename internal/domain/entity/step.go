package entity

import "strings"

// Step 向导步骤，全序且不可回退
type Step string

const (
	StepLanding    Step = "LANDING"
	StepCreateTeam Step = "CREATE_TEAM"
	StepRoleReco   Step = "ROLE_RECO"
	StepTemplate   Step = "TEMPLATE"
	StepDashboard  Step = "DASHBOARD"
)

var stepOrder = []Step{StepLanding, StepCreateTeam, StepRoleReco, StepTemplate, StepDashboard}

// Number 步骤序号（LANDING=0 ... DASHBOARD=4），无效步骤返回 -1
func (s Step) Number() int {
	for i, st := range stepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next 下一步；终态或无效步骤返回 false
func (s Step) Next() (Step, bool) {
	n := s.Number()
	if n < 0 || n+1 >= len(stepOrder) {
		return "", false
	}
	return stepOrder[n+1], true
}

// Valid 是否为已知步骤
func (s Step) Valid() bool {
	return s.Number() >= 0
}

// ParseStep 解析步骤名（大小写不敏感）
func ParseStep(v string) (Step, bool) {
	s := Step(strings.ToUpper(strings.TrimSpace(v)))
	return s, s.Valid()
}
