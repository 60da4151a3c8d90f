package domain

import (
	"fmt"
	"strings"
)

// CostBasisMethod selects which buy lots fund a sell
type CostBasisMethod string

const (
	// CostBasisFIFO consumes the oldest lot first
	CostBasisFIFO CostBasisMethod = "FIFO"
	// CostBasisHIFO consumes the highest-rate lot first
	CostBasisHIFO CostBasisMethod = "HIFO"
)

// ParseCostBasisMethod parses a method name case-insensitively. Empty means FIFO.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(CostBasisFIFO):
		return CostBasisFIFO, nil
	case string(CostBasisHIFO):
		return CostBasisHIFO, nil
	}
	return "", fmt.Errorf("unknown cost basis method %q", s)
}
