package roadmap

import (
	"context"

	types "github.com/yungbote/skillmapper-backend/internal/domain"
	"github.com/yungbote/skillmapper-backend/internal/platform/linkcheck"
)

// LinkChecker is the part of *linkcheck.Prober the filter needs.
type LinkChecker interface {
	CheckAll(ctx context.Context, urls []string) map[string]linkcheck.Result
}

// FilterSteps keeps a resource iff its link probes ok, marking kept ones
// Valid. Every removal is reported in the second return value. Steps are
// never removed, even when all of their resources are.
func FilterSteps(ctx context.Context, checker LinkChecker, steps []types.RoadmapStep) ([]types.RoadmapStep, []Dropped) {
	dropped := []Dropped{}
	if len(steps) == 0 {
		return []types.RoadmapStep{}, dropped
	}

	var urls []string
	for _, s := range steps {
		for _, r := range s.Resources {
			urls = append(urls, r.URL)
		}
	}
	verdicts := checker.CheckAll(ctx, urls)

	out := make([]types.RoadmapStep, 0, len(steps))
	for i, s := range steps {
		kept := make([]types.Resource, 0, len(s.Resources))
		for _, r := range s.Resources {
			v, ok := verdicts[r.URL]
			if !ok {
				v = linkcheck.Result{URL: r.URL, Verdict: linkcheck.VerdictUnreachable}
			}
			if v.OK() {
				valid := true
				r.Valid = &valid
				kept = append(kept, r)
				continue
			}
			dropped = append(dropped, Dropped{
				Step:       i,
				Title:      r.Title,
				URL:        r.URL,
				Reason:     DropReason(v.Verdict),
				StatusCode: v.StatusCode,
			})
		}
		s.Resources = kept
		if s.Bullets == nil {
			s.Bullets = []string{}
		}
		out = append(out, s)
	}
	return out, dropped
}

func countResources(steps []types.RoadmapStep) int {
	n := 0
	for _, s := range steps {
		n += len(s.Resources)
	}
	return n
}
