// Package entity 定义领域实体
package entity

import (
	"errors"
	"strings"
)

// 团队信息校验错误
var (
	ErrTeamNameRequired  = errors.New("team name is required")
	ErrTeamGoalRequired  = errors.New("team goal is required")
	ErrTechStackRequired = errors.New("tech stack must not be empty")
)

// TeamData 创建团队时提交的项目描述，提交后不可变
type TeamData struct {
	Name        string   `json:"name"`
	Goal        string   `json:"goal"`
	TechStack   []string `json:"techStack"`
	Description string   `json:"description"`
}

// NewTeamData 按原样构造 TeamData，只复制技术栈切片
func NewTeamData(name, goal string, techStack []string, description string) TeamData {
	return TeamData{
		Name:        name,
		Goal:        goal,
		TechStack:   cloneStrings(techStack),
		Description: description,
	}
}

// Validate 检查提交前置条件：名称、目标非空，技术栈至少一项
func (t TeamData) Validate() error {
	var errs []error
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, ErrTeamNameRequired)
	}
	if strings.TrimSpace(t.Goal) == "" {
		errs = append(errs, ErrTeamGoalRequired)
	}
	if len(NormalizeTechStack(t.TechStack)) == 0 {
		errs = append(errs, ErrTechStackRequired)
	}
	return errors.Join(errs...)
}

// Clone 深拷贝
func (t TeamData) Clone() TeamData {
	cp := t
	cp.TechStack = cloneStrings(t.TechStack)
	return cp
}

// TechStackLine 以 ", " 连接技术栈，用于 Prompt
func (t TeamData) TechStackLine() string {
	return strings.Join(t.TechStack, ", ")
}

// NormalizeTechStack 去掉空项并保留首次出现的顺序，用于校验
func NormalizeTechStack(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, item := range in {
		v := strings.TrimSpace(item)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
