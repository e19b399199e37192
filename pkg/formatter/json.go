package formatter

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// JSON renders the result list as a JSON array.
func JSON(results []*lint.Result, _ *Context) (string, error) {
	if results == nil {
		results = []*lint.Result{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	return string(data), nil
}

type jsonWithMetadata struct {
	Results  []*lint.Result `json:"results"`
	Metadata struct {
		Cwd       string         `json:"cwd"`
		RulesMeta lint.RulesMeta `json:"rulesMeta"`
	} `json:"metadata"`
}

// JSONWithMetadata renders results together with the rule metadata of the
// rules they mention.
func JSONWithMetadata(results []*lint.Result, ctx *Context) (string, error) {
	var doc jsonWithMetadata
	doc.Results = results
	if doc.Results == nil {
		doc.Results = []*lint.Result{}
	}
	if ctx != nil {
		meta, err := ctx.RulesMeta()
		if err != nil {
			return "", fmt.Errorf("failed to load rule metadata: %w", err)
		}
		doc.Metadata.Cwd = ctx.Cwd
		doc.Metadata.RulesMeta = meta
	}
	if doc.Metadata.RulesMeta == nil {
		doc.Metadata.RulesMeta = lint.RulesMeta{}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	return string(data), nil
}
