package entity

// TechCatalog 创建团队页可选技术栈，顺序即展示顺序
var TechCatalog = []string{
	"React", "Next.js", "TypeScript", "JavaScript",
	"Java", "Spring Boot", "JPA",
	"Python", "Django", "FastAPI", "PyTorch",
	"C", "C++", "C#", "Unity", "Unreal Engine",
	"Go", "Rust", "Swift", "Kotlin", "Flutter",
	"MySQL", "PostgreSQL", "MongoDB", "Redis",
	"Docker", "Kubernetes", "AWS", "GCP", "Azure",
	"Tailwind CSS", "ESLint",
}

// IsKnownTech 是否为目录中的技术
func IsKnownTech(name string) bool {
	for _, t := range TechCatalog {
		if t == name {
			return true
		}
	}
	return false
}
