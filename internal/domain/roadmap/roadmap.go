package roadmap

import "strings"

type ResourceType string

const (
	ResourceVideo    ResourceType = "video"
	ResourceArticle  ResourceType = "article"
	ResourceCourse   ResourceType = "course"
	ResourceBook     ResourceType = "book"
	ResourceTool     ResourceType = "tool"
	ResourcePractice ResourceType = "practice"
)

// ParseResourceType lowercases s and maps anything outside the known set to
// ResourceArticle.
func ParseResourceType(s string) ResourceType {
	switch t := ResourceType(strings.ToLower(strings.TrimSpace(s))); t {
	case ResourceVideo, ResourceArticle, ResourceCourse, ResourceBook, ResourceTool, ResourcePractice:
		return t
	default:
		return ResourceArticle
	}
}

// Resource is one learning link inside a step. Valid is set only after the
// link has been probed; it is never taken from the model.
type Resource struct {
	Title    string       `json:"title"`
	Type     ResourceType `json:"type"`
	URL      string       `json:"url"`
	Provider string       `json:"provider,omitempty"`
	Valid    *bool        `json:"valid,omitempty"`
}

type Step struct {
	Title     string     `json:"title"`
	Bullets   []string   `json:"bullets"`
	Resources []Resource `json:"resources"`
}

type SkillCard struct {
	Name        string   `json:"name"`
	Match       string   `json:"match"`
	Description string   `json:"description"`
	Context     string   `json:"context"`
	Tags        []string `json:"tags"`
}

type NextSkill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Context     string `json:"context"`
}

type Suggestion struct {
	Skill SkillCard `json:"skill"`
	Next  NextSkill `json:"next"`
}
