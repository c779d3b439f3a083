package upstream

import (
	"fmt"
	"strings"
)

// StepKind is the closed set of post-processing steps.
type StepKind int

const (
	// StripPrefix removes a leading prefix once and drops entries without it.
	StripPrefix StepKind = iota
	// Replace substitutes every occurrence of From with To.
	Replace
)

func (k StepKind) String() string {
	switch k {
	case StripPrefix:
		return "strip_prefix"
	case Replace:
		return "replace"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is one post-processing operation applied to discovered versions.
type Step struct {
	Kind   StepKind
	Prefix string // StripPrefix
	From   string // Replace
	To     string // Replace
}

// ApplySteps runs steps over values in order and returns the new slice.
// A strip_prefix step filters as well: entries that do not start with the
// prefix are dropped, so unrelated tags never reach the version list.
func ApplySteps(values []string, steps []Step) ([]string, error) {
	out := append([]string(nil), values...)
	for _, step := range steps {
		switch step.Kind {
		case StripPrefix:
			kept := out[:0]
			for _, v := range out {
				if trimmed, ok := strings.CutPrefix(v, step.Prefix); ok {
					kept = append(kept, trimmed)
				}
			}
			out = kept
		case Replace:
			if step.From == "" {
				return nil, fmt.Errorf("replace step needs a non-empty 'from'")
			}
			for i, v := range out {
				out[i] = strings.ReplaceAll(v, step.From, step.To)
			}
		default:
			return nil, fmt.Errorf("unknown step %s", step.Kind)
		}
	}
	return out, nil
}
