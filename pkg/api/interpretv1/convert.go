package interpretv1

import (
	"fmt"
	"strconv"

	"github.com/HatiCode/fdynamics/pkg/calculators"
	"github.com/HatiCode/fdynamics/pkg/names"
	"google.golang.org/protobuf/types/known/structpb"
)

// Response field names.
const (
	FieldInterpretations = "interpretations"
	FieldFTSDictionary   = "feature_timeseries_dictionary"
	FieldFDDictionary    = "feature_dynamics_dictionary"
	FieldSource          = "source"
)

// NewNameList builds an Interpret request.
func NewNameList(featureNames []string) (*structpb.ListValue, error) {
	values := make([]any, len(featureNames))
	for i, n := range featureNames {
		values[i] = n
	}
	return structpb.NewList(values)
}

// NamesFromList extracts the feature names of an Interpret request. Every
// element must be a string.
func NamesFromList(list *structpb.ListValue) ([]string, error) {
	if list == nil {
		return nil, nil
	}
	return names.Names(list.AsSlice())
}

// EncodeResponse packs interpretations and both dictionaries into a Struct.
func EncodeResponse(interps []names.Interpretation, fts, fd names.Dictionary) (*structpb.Struct, error) {
	items := make([]any, len(interps))
	for i, in := range interps {
		items[i] = map[string]any{
			"name":             in.Name,
			"input_timeseries": in.InputTimeseries,
			"fts_calculator":   in.FTSCalculator,
			"fts_params":       paramsValue(in.FTSParams),
			"window_length":    in.WindowLength,
			"fd_calculator":    in.FDCalculator,
			"fd_params":        paramsValue(in.FDParams),
		}
	}

	s, err := structpb.NewStruct(map[string]any{
		FieldInterpretations: items,
		FieldFTSDictionary:   dictionaryValue(fts),
		FieldFDDictionary:    dictionaryValue(fd),
	})
	if err != nil {
		return nil, fmt.Errorf("encode interpret response: %w", err)
	}
	return s, nil
}

func paramsValue(p calculators.Params) any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// dictionaryValue flattens the named map types into the plain shapes
// structpb accepts. Window lengths become string keys.
func dictionaryValue(d names.Dictionary) map[string]any {
	out := make(map[string]any, len(d))
	for _, window := range d.Windows() {
		kinds := make(map[string]any, len(d[window]))
		for kind, fcs := range d[window] {
			calcs := make(map[string]any, len(fcs))
			for calc, list := range fcs {
				if list == nil {
					calcs[calc] = nil
					continue
				}
				ps := make([]any, len(list))
				for i, p := range list {
					ps[i] = paramsValue(p)
				}
				calcs[calc] = ps
			}
			kinds[kind] = calcs
		}
		out[strconv.Itoa(window)] = kinds
	}
	return out
}
