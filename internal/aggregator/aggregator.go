// Package aggregator derives the summary figures of a ProjectModel
package aggregator

import (
	"slices"
	"sort"

	"github.com/petrarca/delphi-migrator/internal/rules"
	"github.com/petrarca/delphi-migrator/internal/types"
)

// Aggregator rolls the parsed units up into a Summary
type Aggregator struct {
	rules []rules.TechnologyRule
}

// NewAggregator creates an aggregator matching technologies with the given rules
func NewAggregator(techRules []rules.TechnologyRule) *Aggregator {
	return &Aggregator{rules: techRules}
}

// Summarize computes counts and technologies of the model. Framework and
// Packages already present in model.Summary are kept; packages take part in
// the technology scan next to every uses clause.
func (a *Aggregator) Summarize(model *types.ProjectModel) types.Summary {
	summary := model.Summary
	summary.TotalUnits = model.Units.Len()
	summary.TotalForms = model.Forms.Len()
	summary.TotalDataModules = model.DataModules.Len()
	summary.HasDatabase = model.DataModules.Len() > 0

	names := append(a.collectUses(model), summary.Packages...)
	summary.MainTechnologies = []string{}
	summary.Reasons = nil
	for _, rule := range a.rules {
		matched := rule.MatchedBy(names)
		if len(matched) == 0 {
			continue
		}
		summary.MainTechnologies = append(summary.MainTechnologies, rule.Name)
		if summary.Reasons == nil {
			summary.Reasons = make(map[string][]string)
		}
		summary.Reasons[rule.Name] = matched
	}
	summary.ExternalUnits = a.ExternalUnits(model)
	return summary
}

// collectUses returns every uses entry of every unit, in unit order
func (a *Aggregator) collectUses(model *types.ProjectModel) []string {
	var uses []string
	for _, unit := range model.Units.All() {
		uses = append(uses, unit.UsesClause...)
	}
	return uses
}

// UsedUnits returns the distinct unit names referenced by any uses clause, sorted
func (a *Aggregator) UsedUnits(model *types.ProjectModel) []string {
	uses := a.collectUses(model)
	sort.Strings(uses)
	return slices.Compact(uses)
}

// ExternalUnits returns the used units that are not part of the project,
// typically RTL/VCL and third-party units, sorted
func (a *Aggregator) ExternalUnits(model *types.ProjectModel) []string {
	var external []string
	for _, name := range a.UsedUnits(model) {
		if _, ok := model.Units.Get(name); !ok {
			external = append(external, name)
		}
	}
	return external
}
