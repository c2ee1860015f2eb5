package conformance

import "testing"

// Result is the outcome of one case.
type Result struct {
	Case    string
	Skipped bool
	Failed  bool

	// Reason is the declared skip reason, empty for cases that ran.
	Reason string
}

// Run executes the whole catalog against the adapter's backend, one
// subtest per case in catalog order. Skipped cases report their
// declared reason. The returned results follow catalog order.
func Run(t *testing.T, a Adapter) []Result {
	t.Helper()
	if err := a.Validate(); err != nil {
		t.Fatal(err)
	}

	cases := Cases()
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		res := Result{Case: c.Name}
		t.Run(c.Name, func(t *testing.T) {
			// Recorded on exit, including after Skip and FailNow.
			defer func() {
				res.Skipped = t.Skipped()
				res.Failed = t.Failed()
			}()
			if reason, ok := a.Skips[c.Name]; ok {
				res.Reason = reason
				t.Skip(reason)
			}
			c.Run(t, newHarness(t, a, c.Name))
		})
		results = append(results, res)
	}
	return results
}
