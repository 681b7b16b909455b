package scenario

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quillhaven/safeguard/internal/detect"
	"github.com/quillhaven/safeguard/internal/escalate"
	"github.com/quillhaven/safeguard/internal/taxonomy"
)

// Run evaluates all cases in a scenario against the given detector.
// Cases are independent; a detector error fails the case rather than the run.
func Run(s *Scenario, det *detect.Detector) *RunResult {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		cr := CaseResult{
			Index:    i + 1,
			Text:     c.Text,
			Expected: describeExpected(c),
		}

		res, err := det.Detect(c.Text)
		if err != nil {
			cr.Actual = fmt.Sprintf("error: %v", err)
			result.Failed++
			result.Cases = append(result.Cases, cr)
			continue
		}

		cr.Actual = describeActual(string(res.Tier), string(res.Category), int(escalate.LevelFor(res.Tier)), res.ContextSensitiveFlags)
		cr.Passed = caseMatches(c, string(res.Tier), string(res.Category), int(escalate.LevelFor(res.Tier)), res.ContextSensitiveFlags)

		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result
}

func caseMatches(c Case, tier, category string, level int, flags []string) bool {
	if tier != c.Tier {
		return false
	}
	if category != c.Category {
		return false
	}
	if c.Level != 0 && level != c.Level {
		return false
	}
	if c.Flags != nil && !sameFlags(c.Flags, flags) {
		return false
	}
	return true
}

func sameFlags(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	w := append([]string(nil), want...)
	g := append([]string(nil), got...)
	sort.Strings(w)
	sort.Strings(g)
	for i := range w {
		if w[i] != g[i] {
			return false
		}
	}
	return true
}

func describeExpected(c Case) string {
	if c.Tier == "" {
		if c.Flags != nil {
			return fmt.Sprintf("no match, flags [%s]", strings.Join(c.Flags, " "))
		}
		return "no match"
	}
	s := fmt.Sprintf("tier %s / %s", c.Tier, c.Category)
	if c.Level != 0 {
		s += fmt.Sprintf(" / level %d", c.Level)
	}
	return s
}

func describeActual(tier, category string, level int, flags []string) string {
	if tier == "" {
		if len(flags) > 0 {
			return fmt.Sprintf("no match, flags [%s]", strings.Join(flags, " "))
		}
		return "no match"
	}
	return fmt.Sprintf("tier %s / %s / level %d", tier, category, level)
}

// LoadAndRun loads a scenario YAML file and a taxonomy, then runs.
func LoadAndRun(path, taxonomyPath string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	tx, err := taxonomy.Load(taxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	result := Run(&s, detect.New(tx))
	result.File = path
	return result, nil
}
