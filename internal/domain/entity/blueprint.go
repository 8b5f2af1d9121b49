package entity

import "fmt"

// ScaffoldFile 生成的脚手架文件，内容为不透明文本
type ScaffoldFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Scaffold 一侧（后端/前端）的脚手架
type Scaffold struct {
	Directory string         `json:"directory"`
	Files     []ScaffoldFile `json:"files"`
}

// DatabaseSpec 数据库 DDL
type DatabaseSpec struct {
	Schema string `json:"schema"`
}

// TechnicalBlueprint AI 生成的技术蓝图
type TechnicalBlueprint struct {
	Backend  Scaffold     `json:"backend"`
	Frontend Scaffold     `json:"frontend"`
	Database DatabaseSpec `json:"database"`
}

// Clone 深拷贝
func (b TechnicalBlueprint) Clone() TechnicalBlueprint {
	return TechnicalBlueprint{
		Backend:  b.Backend.clone(),
		Frontend: b.Frontend.clone(),
		Database: b.Database,
	}
}

func (s Scaffold) clone() Scaffold {
	cp := Scaffold{Directory: s.Directory}
	if s.Files != nil {
		cp.Files = make([]ScaffoldFile, len(s.Files))
		copy(cp.Files, s.Files)
	}
	return cp
}

// ProjectBlueprint 会话最终产物
type ProjectBlueprint struct {
	Team     TeamData           `json:"team"`
	Roles    []RecommendedRole  `json:"roles"`
	Template TemplateChoice     `json:"template"`
	TechSpec TechnicalBlueprint `json:"techSpec"`
}

// Clone 深拷贝
func (p ProjectBlueprint) Clone() ProjectBlueprint {
	return ProjectBlueprint{
		Team:     p.Team.Clone(),
		Roles:    CloneRoles(p.Roles),
		Template: p.Template.Clone(),
		TechSpec: p.TechSpec.Clone(),
	}
}

// DashboardTab 仪表盘标签页
type DashboardTab string

const (
	TabRoles    DashboardTab = "roles"
	TabBackend  DashboardTab = "backend"
	TabFrontend DashboardTab = "frontend"
	TabDatabase DashboardTab = "database"
)

// DashboardTabs 标签页顺序
var DashboardTabs = []DashboardTab{TabRoles, TabBackend, TabFrontend, TabDatabase}

// Tab 返回指定标签页的视图数据
func (p ProjectBlueprint) Tab(tab DashboardTab) (any, error) {
	switch tab {
	case TabRoles:
		return CloneRoles(p.Roles), nil
	case TabBackend:
		return p.TechSpec.Backend.clone(), nil
	case TabFrontend:
		return p.TechSpec.Frontend.clone(), nil
	case TabDatabase:
		return p.TechSpec.Database, nil
	default:
		return nil, fmt.Errorf("unknown dashboard tab %q", tab)
	}
}
