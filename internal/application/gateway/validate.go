package gateway

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"quzz-ai-api/internal/domain/entity"
)

// ValidationError 模型输出不满足声明的结构
type ValidationError struct {
	Issues []string
}

func (e ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "ai response validation failed"
	}
	return "ai response validation failed: " + strings.Join(e.Issues, "; ")
}

// ParseRoles 校验并解码角色数组。顶层不是数组时返回错误；
// 缺字段或类型不符的条目被丢弃，丢弃原因在 dropped 中返回。
func ParseRoles(raw string) (roles []entity.RecommendedRole, dropped []string, err error) {
	if !gjson.Valid(raw) {
		return nil, nil, ValidationError{Issues: []string{"response is not valid JSON"}}
	}
	root := gjson.Parse(raw)
	if !root.IsArray() {
		return nil, nil, ValidationError{Issues: []string{"top-level value must be an array"}}
	}

	roles = make([]entity.RecommendedRole, 0, len(root.Array()))
	for i, item := range root.Array() {
		role, issue := parseRole(item)
		if issue != "" {
			dropped = append(dropped, fmt.Sprintf("[%d] %s", i, issue))
			continue
		}
		roles = append(roles, role)
	}
	return roles, dropped, nil
}

func parseRole(item gjson.Result) (entity.RecommendedRole, string) {
	if !item.IsObject() {
		return entity.RecommendedRole{}, "item must be an object"
	}
	title := item.Get("title")
	if title.Type != gjson.String {
		return entity.RecommendedRole{}, "title must be a string"
	}
	resp, ok := stringArray(item.Get("responsibilities"))
	if !ok {
		return entity.RecommendedRole{}, "responsibilities must be an array of strings"
	}
	skills, ok := stringArray(item.Get("requiredSkills"))
	if !ok {
		return entity.RecommendedRole{}, "requiredSkills must be an array of strings"
	}
	return entity.RecommendedRole{
		Title:            title.String(),
		Responsibilities: resp,
		RequiredSkills:   skills,
	}, ""
}

func stringArray(v gjson.Result) ([]string, bool) {
	if !v.IsArray() {
		return nil, false
	}
	elems := v.Array()
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e.Type != gjson.String {
			return nil, false
		}
		out = append(out, e.String())
	}
	return out, true
}

// ParseBlueprint 校验并解码技术蓝图。三个顶层对象必须存在；
// 出现的字段类型必须正确，缺失的字符串字段取空串，文件顺序保持不变。
func ParseBlueprint(raw string) (*entity.TechnicalBlueprint, error) {
	if !gjson.Valid(raw) {
		return nil, ValidationError{Issues: []string{"response is not valid JSON"}}
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return nil, ValidationError{Issues: []string{"top-level value must be an object"}}
	}

	var issues []string
	for _, key := range []string{"backend", "frontend", "database"} {
		if v := root.Get(key); !v.IsObject() {
			issues = append(issues, key+" must be an object")
		}
	}
	if len(issues) > 0 {
		return nil, ValidationError{Issues: issues}
	}

	bp := &entity.TechnicalBlueprint{
		Backend:  parseScaffold(root.Get("backend"), "backend", &issues),
		Frontend: parseScaffold(root.Get("frontend"), "frontend", &issues),
		Database: entity.DatabaseSpec{
			Schema: optionalString(root.Get("database"), "schema", "database", &issues),
		},
	}
	if len(issues) > 0 {
		return nil, ValidationError{Issues: issues}
	}
	return bp, nil
}

func parseScaffold(v gjson.Result, path string, issues *[]string) entity.Scaffold {
	s := entity.Scaffold{
		Directory: optionalString(v, "directory", path, issues),
		Files:     []entity.ScaffoldFile{},
	}
	files := v.Get("files")
	if !files.Exists() || files.Type == gjson.Null {
		return s
	}
	if !files.IsArray() {
		*issues = append(*issues, path+".files must be an array")
		return s
	}
	for i, f := range files.Array() {
		fp := fmt.Sprintf("%s.files[%d]", path, i)
		if !f.IsObject() {
			*issues = append(*issues, fp+" must be an object")
			continue
		}
		s.Files = append(s.Files, entity.ScaffoldFile{
			Name:    optionalString(f, "name", fp, issues),
			Path:    optionalString(f, "path", fp, issues),
			Content: optionalString(f, "content", fp, issues),
		})
	}
	return s
}

// optionalString 缺失或 null 取空串，其它非字符串类型记为问题
func optionalString(obj gjson.Result, key, path string, issues *[]string) string {
	v := obj.Get(key)
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return ""
	case v.Type == gjson.String:
		return v.String()
	default:
		*issues = append(*issues, path+"."+key+" must be a string")
		return ""
	}
}
