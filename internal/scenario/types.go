// Package scenario runs YAML regression cases through the real detection
// pipeline. Taxonomy edits go through `safeguard check` before they ship:
// a phrase change that downgrades a known crisis sentence fails the run.
package scenario

// Case is one test case within a scenario: a text and the classification it
// must produce. Tier and category are always checked (empty means no match).
// Level is checked when nonzero. Flags are checked when the key is present;
// `flags: []` asserts no flags, an absent key skips the check.
type Case struct {
	Text     string   `yaml:"text"`
	Tier     string   `yaml:"tier,omitempty"`
	Category string   `yaml:"category,omitempty"`
	Level    int      `yaml:"level,omitempty"`
	Flags    []string `yaml:"flags,omitempty"`
}

// Scenario is a named collection of detection test cases.
type Scenario struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int    `json:"index"`
	Passed   bool   `json:"passed"`
	Text     string `json:"text"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
