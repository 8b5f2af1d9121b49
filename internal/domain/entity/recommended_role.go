package entity

// RecommendedRole AI 推荐的团队角色
type RecommendedRole struct {
	Title            string   `json:"title"`
	Responsibilities []string `json:"responsibilities"`
	RequiredSkills   []string `json:"requiredSkills"`
}

// Clone 深拷贝
func (r RecommendedRole) Clone() RecommendedRole {
	return RecommendedRole{
		Title:            r.Title,
		Responsibilities: cloneStrings(r.Responsibilities),
		RequiredSkills:   cloneStrings(r.RequiredSkills),
	}
}

// CloneRoles 深拷贝角色列表；nil 保持为 nil
func CloneRoles(in []RecommendedRole) []RecommendedRole {
	if in == nil {
		return nil
	}
	out := make([]RecommendedRole, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
