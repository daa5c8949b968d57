package domain

import "math"

var heatCategories = rangeTable[HeatRiskCategory]{
	{Min: math.Inf(-1), Max: 29.9, Value: CategoryWhite},
	{Min: 30.0, Max: 30.9, Value: CategoryGreen},
	{Min: 31.0, Max: 31.9, Value: CategoryYellow},
	{Min: 32.0, Max: 32.9, Value: CategoryRed},
	{Min: 33.0, Max: math.Inf(1), Value: CategoryBlack},
}

// Yellow and Red share the 30 minute threshold.
var minActivityMinutes = rangeTable[int]{
	{Min: math.Inf(-1), Max: 29.9, Value: 60},
	{Min: 30.0, Max: 30.9, Value: 45},
	{Min: 31.0, Max: 32.9, Value: 30},
	{Min: 33.0, Max: math.Inf(1), Value: 15},
}

// ClassifyHeatRisk maps an effective WBGT to its heat category.
// NaN yields CategoryUndefined.
func ClassifyHeatRisk(wbgt float64) HeatRiskCategory {
	c, ok := heatCategories.lookup(wbgt)
	if !ok {
		return CategoryUndefined
	}
	return c
}

// MinActivityMinutes returns the minimum continuous activity duration for an
// effective WBGT. The second value is false when the WBGT is not classifiable.
func MinActivityMinutes(wbgt float64) (int, bool) {
	return minActivityMinutes.lookup(wbgt)
}
