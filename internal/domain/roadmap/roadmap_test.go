package roadmap

import "testing"

func TestParseResourceType(t *testing.T) {
	cases := map[string]ResourceType{
		"video":    ResourceVideo,
		" Course ": ResourceCourse,
		"BOOK":     ResourceBook,
		"practice": ResourcePractice,
		"tool":     ResourceTool,
		"":         ResourceArticle,
		"podcast":  ResourceArticle,
		"tutorial": ResourceArticle,
	}
	for in, want := range cases {
		if got := ParseResourceType(in); got != want {
			t.Errorf("ParseResourceType(%q)=%q want %q", in, got, want)
		}
	}
}
