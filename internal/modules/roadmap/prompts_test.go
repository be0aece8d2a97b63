package roadmap

import (
	"strings"
	"testing"
)

func TestRoadmapPromptEmbedsInputsLiterally(t *testing.T) {
	p := RoadmapPrompt("Chef", "beginner")
	for _, want := range []string{
		"Build me a roadmap to become a Chef in 3 steps.",
		"I am at a beginner level.",
		`"link": "..."`,
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestPromptsDoNotEscape(t *testing.T) {
	career := `<b>Data "Wizard"</b> & {{.Career}}`
	p := SuggestionsPrompt(career, "")
	if !strings.Contains(p, "become a "+career+" at a  level") {
		t.Fatalf("career not embedded verbatim:\n%s", p)
	}
}

func TestChatPrompt(t *testing.T) {
	got := ChatPrompt("How do I learn Go?")
	want := "Please respond with no special characters and no emojis. Give me Simple text that is helpful and answers the question: How do I learn Go?"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}
