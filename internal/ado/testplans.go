package ado

import (
	"context"
	"net/url"
	"strconv"
)

func testPlanPath(project string) string {
	return url.PathEscape(project) + "/_apis/test/plans"
}

// ListTestPlans returns the test plans of a project.
func (c *Client) ListTestPlans(ctx context.Context, project string, limit int) ([]TestPlan, error) {
	params := url.Values{}
	params.Set("includePlanDetails", "true")
	return getPaged[TestPlan](ctx, c, testPlanPath(project), params, limit)
}

// ListTestSuites returns the suites of a test plan.
func (c *Client) ListTestSuites(ctx context.Context, project string, planID, limit int) ([]TestSuite, error) {
	return getPaged[TestSuite](ctx, c, testPlanPath(project)+"/"+strconv.Itoa(planID)+"/suites", nil, limit)
}

// ListTestPoints returns the test points of a suite with their latest outcome.
func (c *Client) ListTestPoints(ctx context.Context, project string, planID, suiteID, limit int) ([]TestPoint, error) {
	path := testPlanPath(project) + "/" + strconv.Itoa(planID) + "/suites/" + strconv.Itoa(suiteID) + "/points"
	return getPaged[TestPoint](ctx, c, path, nil, limit)
}
