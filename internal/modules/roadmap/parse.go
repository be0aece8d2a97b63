package roadmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	types "github.com/yungbote/skillmapper-backend/internal/domain"
)

// ErrMalformed is returned when a model reply cannot be read as the
// expected JSON shape.
var ErrMalformed = errors.New("malformed model reply")

// StripFences removes every "```json" and "```" marker and trims the rest.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func decodeLoose(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(StripFences(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformed)
	}
	return v, nil
}

// ParseSteps reads a roadmap reply: a JSON array of steps, or an object
// carrying that array under "steps", "roadmap" or "roadmapSteps".
// Non-object elements are skipped.
func ParseSteps(raw string) ([]types.RoadmapStep, error) {
	v, err := decodeLoose(raw)
	if err != nil {
		return nil, err
	}
	var arr []any
	switch t := v.(type) {
	case []any:
		arr = t
	case map[string]any:
		for _, k := range []string{"steps", "roadmap", "roadmapSteps"} {
			if a, ok := t[k].([]any); ok {
				arr = a
				break
			}
		}
		if arr == nil {
			return nil, fmt.Errorf("%w: object without a steps array", ErrMalformed)
		}
	default:
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformed, v)
	}
	return coerceSteps(arr), nil
}

// ParseSuggestions reads a suggestions reply. Either field may come back
// nil when the model omitted it or sent the wrong shape.
func ParseSuggestions(raw string) (*types.Suggestion, []types.RoadmapStep, error) {
	v, err := decodeLoose(raw)
	if err != nil {
		return nil, nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("%w: expected object, got %T", ErrMalformed, v)
	}
	var sug *types.Suggestion
	if m, ok := obj["suggestion"].(map[string]any); ok {
		sug = coerceSuggestion(m)
	}
	var steps []types.RoadmapStep
	if a, ok := obj["roadmapSteps"].([]any); ok {
		steps = coerceSteps(a)
	}
	return sug, steps, nil
}

func coerceSteps(arr []any) []types.RoadmapStep {
	steps := make([]types.RoadmapStep, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		steps = append(steps, coerceStep(m))
	}
	return steps
}

func coerceStep(m map[string]any) types.RoadmapStep {
	step := types.RoadmapStep{
		Title:     str(m["title"]),
		Bullets:   strList(m["bullets"]),
		Resources: []types.Resource{},
	}
	if res, ok := m["resources"].([]any); ok {
		for _, r := range res {
			rm, ok := r.(map[string]any)
			if !ok {
				continue
			}
			step.Resources = append(step.Resources, coerceResource(rm))
		}
	}
	return step
}

func coerceResource(m map[string]any) types.Resource {
	link := strings.TrimSpace(str(m["link"]))
	if link == "" {
		link = strings.TrimSpace(str(m["url"]))
	}
	return types.Resource{
		Title:    str(m["title"]),
		Type:     types.ParseResourceType(str(m["type"])),
		URL:      link,
		Provider: str(m["provider"]),
	}
}

func coerceSuggestion(m map[string]any) *types.Suggestion {
	s := &types.Suggestion{}
	if skill, ok := m["skill"].(map[string]any); ok {
		s.Skill = types.SkillCard{
			Name:        str(skill["name"]),
			Match:       str(skill["match"]),
			Description: str(skill["description"]),
			Context:     str(skill["context"]),
			Tags:        strList(skill["tags"]),
		}
	}
	if s.Skill.Tags == nil {
		s.Skill.Tags = []string{}
	}
	if next, ok := m["next"].(map[string]any); ok {
		s.Next = types.NextSkill{
			Name:        str(next["name"]),
			Description: str(next["description"]),
			Context:     str(next["context"]),
		}
	}
	return s
}

// str renders scalars as text and compound values as compact JSON.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(buf.String())
	}
}

// strList accepts an array (each element stringified) or a lone string.
func strList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if el == nil {
				continue
			}
			out = append(out, str(el))
		}
		return out
	case nil:
		return []string{}
	default:
		return []string{str(t)}
	}
}
