package normalize

import "github.com/golovatskygroup/mcp-ado/internal/ado"

// TestPlan is the stable test plan shape.
type TestPlan struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	State       *string `json:"state"`
	UpdatedDate *string `json:"updated_date"`
}

func NewTestPlan(raw ado.TestPlan) TestPlan {
	return TestPlan{
		ID:          raw.ID,
		Name:        raw.Name,
		State:       optional(raw.State),
		UpdatedDate: optional(raw.UpdatedDate),
	}
}

func TestPlans(raw []ado.TestPlan) []TestPlan {
	out := make([]TestPlan, 0, len(raw))
	for _, p := range raw {
		out = append(out, NewTestPlan(p))
	}
	return out
}

// TestSuite is the stable test suite shape.
type TestSuite struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestSuites(raw []ado.TestSuite) []TestSuite {
	out := make([]TestSuite, 0, len(raw))
	for _, s := range raw {
		out = append(out, TestSuite{ID: s.ID, Name: s.Name})
	}
	return out
}

// TestCaseRef identifies the test case behind a point.
type TestCaseRef struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

// TestPoint is the stable test point shape with its latest outcome.
type TestPoint struct {
	ID       int         `json:"id"`
	Outcome  *string     `json:"outcome"`
	State    *string     `json:"state"`
	TestCase TestCaseRef `json:"test_case"`
}

func NewTestPoint(raw ado.TestPoint) TestPoint {
	return TestPoint{
		ID:      raw.ID,
		Outcome: optional(raw.Outcome),
		State:   optional(raw.State),
		TestCase: TestCaseRef{
			ID:   raw.TestCase.ID,
			Name: optional(raw.TestCase.Name),
		},
	}
}

func TestPoints(raw []ado.TestPoint) []TestPoint {
	out := make([]TestPoint, 0, len(raw))
	for _, p := range raw {
		out = append(out, NewTestPoint(p))
	}
	return out
}
