package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/yungbote/skillmapper-backend/internal/modules/roadmap"
	"github.com/yungbote/skillmapper-backend/internal/platform/openai"
)

type stubRoadmaps struct {
	gotCareer, gotDifficulty string
	err                      error
}

func (s *stubRoadmaps) Roadmap(_ context.Context, career, difficulty string) (roadmap.RoadmapResult, error) {
	s.gotCareer, s.gotDifficulty = career, difficulty
	return roadmap.RoadmapResult{Status: roadmap.StatusOK}, s.err
}

func (s *stubRoadmaps) Suggestions(_ context.Context, career, difficulty string) (roadmap.SuggestionsResult, error) {
	s.gotCareer, s.gotDifficulty = career, difficulty
	return roadmap.SuggestionsResult{Status: roadmap.StatusValidatedEmpty}, s.err
}

func TestRunRoadmapPrintsJSON(t *testing.T) {
	for _, tc := range []struct {
		suggestions bool
		wantStatus  string
	}{
		{suggestions: false, wantStatus: "ok"},
		{suggestions: true, wantStatus: "validated_empty"},
	} {
		stub := &stubRoadmaps{}
		var out bytes.Buffer
		err := runRoadmap(context.Background(), &out, stub, roadmapOpts{career: "Chef", difficulty: "beginner", suggestions: tc.suggestions})
		if err != nil {
			t.Fatalf("runRoadmap: %v", err)
		}
		var got map[string]any
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("decode %q: %v", out.String(), err)
		}
		if got["status"] != tc.wantStatus {
			t.Fatalf("status: got=%v want=%s", got["status"], tc.wantStatus)
		}
		if stub.gotCareer != "Chef" || stub.gotDifficulty != "beginner" {
			t.Fatalf("inputs: got=%q/%q", stub.gotCareer, stub.gotDifficulty)
		}
	}
}

func TestRunRoadmapPropagatesUpstreamError(t *testing.T) {
	stub := &stubRoadmaps{err: openai.ErrUpstream}
	var out bytes.Buffer
	err := runRoadmap(context.Background(), &out, stub, roadmapOpts{career: "Chef", difficulty: "beginner"})
	if !errors.Is(err, openai.ErrUpstream) {
		t.Fatalf("err: got=%v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRoadmapCmdRequiresCareer(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"roadmap"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error without --career")
	}
}
