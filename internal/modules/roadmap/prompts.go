package roadmap

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Templates are parsed once at init. Inputs are substituted verbatim:
// text/template does no escaping.
var (
	roadmapTemplate     = template.Must(template.ParseFS(promptFS, "prompts/roadmap.tmpl"))
	suggestionsTemplate = template.Must(template.ParseFS(promptFS, "prompts/suggestions.tmpl"))
	chatTemplate        = template.Must(template.ParseFS(promptFS, "prompts/chat.tmpl"))
)

type careerInput struct {
	Career     string
	Difficulty string
}

type chatInput struct {
	Prompt string
}

func RoadmapPrompt(career, difficulty string) string {
	return render(roadmapTemplate, careerInput{Career: career, Difficulty: difficulty})
}

func SuggestionsPrompt(career, difficulty string) string {
	return render(suggestionsTemplate, careerInput{Career: career, Difficulty: difficulty})
}

func ChatPrompt(prompt string) string {
	return render(chatTemplate, chatInput{Prompt: prompt})
}

// render only fails on a template bug, which the package tests catch.
func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		panic("roadmap: render " + t.Name() + ": " + err.Error())
	}
	return strings.TrimRight(b.String(), "\n")
}
