package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quillhaven/safeguard/internal/detect"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAllCasesPass(t *testing.T) {
	det := detect.NewDefault()

	s := &Scenario{
		Name: "crisis phrases",
		Cases: []Case{
			{Text: "I want to kill myself", Tier: "C", Category: "selfHarm", Level: 4},
			{Text: "had pizza for lunch"},
		},
	}

	result := Run(s, det)
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d: %+v", result.Failed, result.Cases)
	}
	if result.Passed != 2 {
		t.Errorf("expected 2 passed, got %d", result.Passed)
	}
}

func TestFailedAssertionDetected(t *testing.T) {
	det := detect.NewDefault()

	s := &Scenario{
		Name: "wrong expectation",
		Cases: []Case{
			// kill myself is tier C, but we expect no match
			{Text: "I want to kill myself"},
		},
	}

	result := Run(s, det)
	if result.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed)
	}
	if result.Cases[0].Passed {
		t.Error("case should have failed")
	}
	if !strings.Contains(result.Cases[0].Actual, "tier C") {
		t.Errorf("actual should name the tier, got %q", result.Cases[0].Actual)
	}
}

func TestFlagAssertions(t *testing.T) {
	det := detect.NewDefault()

	s := &Scenario{
		Name: "context flags",
		Cases: []Case{
			{Text: "I hate my life", Tier: "B", Category: "persistentDistress", Flags: []string{"hate"}},
			{Text: "my hamster died yesterday", Flags: []string{}},
			{Text: "there was blood everywhere in the movie", Flags: []string{"blood"}},
		},
	}

	result := Run(s, det)
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d: %+v", result.Failed, result.Cases)
	}
}

func TestAbsentFlagsKeySkipsCheck(t *testing.T) {
	det := detect.NewDefault()

	// "I hate my life" carries a "hate" flag, but the case omits the flags
	// key, so only tier and category are asserted.
	s := &Scenario{
		Name:  "flags unchecked",
		Cases: []Case{{Text: "I hate my life", Tier: "B", Category: "persistentDistress"}},
	}

	result := Run(s, det)
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %+v", result.Cases)
	}
}

func TestLoadAndRunFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "crisis.yaml", `
name: "crisis regression"
cases:
  - text: "I want to kill myself"
    tier: C
    category: selfHarm
    level: 4
  - text: "k1ll mysel f"
    tier: C
    category: selfHarm
  - text: "bit worried about the test"
    tier: A
    category: worry
`)

	result, err := LoadAndRun(path, filepath.Join(dir, "no-taxonomy.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d: %+v", result.Failed, result.Cases)
	}
	if result.File != path {
		t.Errorf("expected file path set, got %q", result.File)
	}
}

func TestInvalidScenarioYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "bad.yaml", ":::not yaml\x00")

	if _, err := LoadAndRun(path, ""); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEmptyCasesList(t *testing.T) {
	result := Run(&Scenario{Name: "empty"}, detect.NewDefault())
	if result.Total != 0 || result.Failed != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestFormatTextReportsFailures(t *testing.T) {
	det := detect.NewDefault()
	s := &Scenario{
		Name:  "mixed",
		Cases: []Case{{Text: "I want to kill myself"}},
	}
	out := FormatText([]*RunResult{Run(s, det)})
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected FAIL in output:\n%s", out)
	}
	if !strings.Contains(out, "0 of 1 cases passed") {
		t.Errorf("expected summary line:\n%s", out)
	}
}

func TestFormatTextTruncatesOnRuneBoundary(t *testing.T) {
	// 50 two-byte runes: a byte-indexed cut would split one in half.
	long := strings.Repeat("ö", 50)
	r := &RunResult{
		Name:  "long text",
		Total: 1, Failed: 1,
		Cases: []CaseResult{{Index: 0, Passed: false, Text: long, Expected: "no match", Actual: "tier B"}},
	}

	out := FormatText([]*RunResult{r})
	if !strings.Contains(out, strings.Repeat("ö", 37)+"...") {
		t.Errorf("expected whole-rune truncation in output:\n%s", out)
	}
}
