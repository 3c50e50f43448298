package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/panbanda/defectset/pkg/table"
)

// Plan lists the versions of a run. Versions are labeled and ordered oldest first;
// the last one is the testing version. Rest versions are extracted without labels on
// a best-effort basis.
type Plan struct {
	Versions []string
	Rest     []string
}

// ProcessingError records a rest version that failed.
type ProcessingError struct {
	Version string
	Err     error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Version, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects rest-version failures.
type ProcessingErrors []ProcessingError

func (e ProcessingErrors) Error() string {
	msgs := make([]string, len(e))
	for i, pe := range e {
		msgs[i] = pe.Error()
	}
	return fmt.Sprintf("%d versions failed: %s", len(e), strings.Join(msgs, "; "))
}

// Predictions holds the classifier output for the testing tables, in row order.
type Predictions struct {
	Class  []bool
	Method []bool
}

// Result is the outcome of a run.
type Result struct {
	// Training concatenates the tables of every labeled version but the last.
	Training TableSet
	// Testing holds the feature tables of the last labeled version.
	Testing        TableSet
	TestingVersion string
	// TestingIdentity holds the File, Class and Method of each testing row.
	TestingIdentity TableSet
	Versions        []*VersionResult
	Rest            []*VersionResult
	Failures        ProcessingErrors
	Predictions     *Predictions
}

// Run processes every version of the plan in order. A labeled version failure stops
// the run; a rest version failure is recorded and skipped.
func (p *Pipeline) Run(ctx context.Context, plan Plan) (*Result, error) {
	if len(plan.Versions) == 0 {
		return nil, ErrNoVersions
	}

	res := &Result{}
	for _, v := range plan.Versions {
		vr, err := p.ProcessVersion(ctx, v, true)
		p.report(v, err)
		if err != nil {
			return nil, fmt.Errorf("version %s: %w", v, err)
		}
		res.Versions = append(res.Versions, vr)
	}

	for _, v := range plan.Rest {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vr, err := p.ProcessVersion(ctx, v, false)
		p.report(v, err)
		if err != nil {
			p.logger.Warn("skipping version", "version", v, "error", err)
			res.Failures = append(res.Failures, ProcessingError{Version: v, Err: err})
			continue
		}
		res.Rest = append(res.Rest, vr)
	}

	split(res)

	if p.classifier != nil {
		preds, err := p.classify(ctx, res)
		if err != nil {
			return nil, err
		}
		res.Predictions = preds
	}
	return res, nil
}

// split concatenates training versions and separates the testing identity.
func split(res *Result) {
	last := res.Versions[len(res.Versions)-1]
	var class, method, agg []*table.Table
	for _, vr := range res.Versions[:len(res.Versions)-1] {
		class = append(class, vr.Tables.Class)
		method = append(method, vr.Tables.Method)
		agg = append(agg, vr.Tables.Aggregated)
	}
	res.Training = TableSet{
		Class:      table.Concat(class...),
		Method:     table.Concat(method...),
		Aggregated: table.Concat(agg...),
	}
	res.TestingVersion = last.Version
	res.Testing = last.Tables
	res.TestingIdentity = TableSet{
		Class:      table.Identity(last.Tables.Class),
		Method:     table.Identity(last.Tables.Method),
		Aggregated: table.Identity(last.Tables.Aggregated),
	}
}

func (p *Pipeline) classify(ctx context.Context, res *Result) (*Predictions, error) {
	if err := p.classifier.Train(ctx, res.Training); err != nil {
		return nil, fmt.Errorf("failed to train classifier: %w", err)
	}
	class, err := p.classifier.Predict(ctx, res.Testing.Class)
	if err != nil {
		return nil, fmt.Errorf("failed to predict classes: %w", err)
	}
	method, err := p.classifier.Predict(ctx, res.Testing.Method)
	if err != nil {
		return nil, fmt.Errorf("failed to predict methods: %w", err)
	}
	return &Predictions{Class: class, Method: method}, nil
}

func (p *Pipeline) report(version string, err error) {
	if p.progress != nil {
		p.progress(version, err)
	}
}
