package pipeline

import (
	"fmt"
	"sort"

	"boxoffice-pipeline/internal/model"
)

// DefaultVariant is used when a request names none.
const DefaultVariant = "v5"

// variants are the dashboard presets, each adding to the previous one.
var variants = map[string]model.Variant{
	"v1": {Name: "v1", Competing: false, Aggregation: model.GranularityDaily, SelectBy: model.SelectByCode},
	"v2": {
		Name: "v2", Competing: true, Aggregation: model.GranularityDaily, SelectBy: model.SelectByName,
		Charts: []model.ChartKind{model.ChartLine},
	},
	"v3": {
		Name: "v3", Competing: true, Aggregation: model.GranularityMonthly, SelectBy: model.SelectByName,
		Charts: []model.ChartKind{model.ChartLine, model.ChartScatter},
	},
	"v4": {
		Name: "v4", Competing: true, Aggregation: model.GranularityMonthly, SelectBy: model.SelectByName,
		Charts: []model.ChartKind{model.ChartLine, model.ChartScatter, model.ChartBoxplot},
	},
	"v5": {
		Name: "v5", Competing: true, Aggregation: model.GranularityWeekly, SelectBy: model.SelectByName,
		Charts: []model.ChartKind{model.ChartLine, model.ChartScatter, model.ChartBoxplot, model.ChartDumbbell},
	},
}

// VariantNames lists the known presets.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupVariant returns a copy of the named preset.
func LookupVariant(name string) (model.Variant, error) {
	if name == "" {
		name = DefaultVariant
	}
	v, ok := variants[name]
	if !ok {
		return model.Variant{}, fmt.Errorf("%w: unknown variant %q", ErrInvalidRequest, name)
	}
	v.Charts = append([]model.ChartKind(nil), v.Charts...)
	return v, nil
}

// ResolveVariant applies the request's chart and aggregation overrides to its preset.
func ResolveVariant(req model.DashboardRequest, fallback string) (model.Variant, error) {
	name := req.Variant
	if name == "" {
		name = fallback
	}
	v, err := LookupVariant(name)
	if err != nil {
		return v, err
	}

	if req.Charts != nil {
		for _, c := range req.Charts {
			switch c {
			case model.ChartLine, model.ChartScatter, model.ChartBoxplot, model.ChartDumbbell:
			default:
				return v, fmt.Errorf("%w: unknown chart %q", ErrInvalidRequest, c)
			}
		}
		v.Charts = append([]model.ChartKind(nil), req.Charts...)
	}

	if req.Aggregation != "" {
		switch req.Aggregation {
		case model.GranularityDaily, model.GranularityWeekly, model.GranularityMonthly, model.GranularityYearly:
			v.Aggregation = req.Aggregation
		default:
			return v, fmt.Errorf("%w: unknown aggregation %q", ErrInvalidRequest, req.Aggregation)
		}
	}
	return v, nil
}
