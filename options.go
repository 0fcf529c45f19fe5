package heimer

import (
	"fmt"
)

// TrailingListMinimum is the token count a multi-field line with a trailing
// list must at least provide.
type TrailingListMinimum int

const (
	// AllFields requires one token per field, so the trailing list is never empty.
	AllFields TrailingListMinimum = iota
	// PrecedingFields requires only the fields before the list.
	PrecedingFields
)

func (m TrailingListMinimum) String() string {
	if m == PrecedingFields {
		return "preceding"
	}
	return "fields"
}

// ContractOptions are the configurable points of the parsing contract. Every
// emitter must honor the same values.
type ContractOptions struct {
	TrailingListMinimum TrailingListMinimum `json:"trailingListMinimum"`
	// SeparatorBeforeFirst makes a "!" repetition read a blank line before its
	// first instance as well as between instances.
	SeparatorBeforeFirst bool `json:"separatorBeforeFirst"`
	// MinListTokens is the fewest elements a line holding a single list field
	// may contain.
	MinListTokens int `json:"minListTokens"`
}

func DefaultContractOptions() ContractOptions {
	return ContractOptions{
		TrailingListMinimum: AllFields,
		MinListTokens:       1,
	}
}

func ContractOptionsFromData(conf *Data) (ContractOptions, error) {
	opts := DefaultContractOptions()
	switch v := conf.GetStringDefault("trailing-list-minimum", "fields"); v {
	case "fields":
		opts.TrailingListMinimum = AllFields
	case "preceding":
		opts.TrailingListMinimum = PrecedingFields
	default:
		return opts, fmt.Errorf("Bad 'trailing-list-minimum' value %q: expected \"fields\" or \"preceding\"", v)
	}
	opts.SeparatorBeforeFirst = conf.GetBoolDefault("separator-before-first", false)
	opts.MinListTokens = conf.GetIntDefault("min-list-tokens", 1)
	if opts.MinListTokens < 0 {
		return opts, fmt.Errorf("Bad 'min-list-tokens' value %d: must not be negative", opts.MinListTokens)
	}
	return opts, nil
}
