// Package domain implements the heat-exhaustion risk engine used by the
// soldier self-assessment and commander dashboard flows.
//
// # Inputs
//
// An assessment combines a weather station reading with a soldier's
// self-reported risk factors:
//
//	Air temperature (°C) and relative humidity (%) from the camp's station.
//	Hydration indicator: urine colour, "Clear", "Pale Yellow", "Dark Brown".
//	Uniform load: "PT Kit" or "Full Battle Order".
//	Activity intensity: "Light", "Moderate" or "Heavy".
//	Work and rest minutes for the activity bout.
//
// # WBGT Estimation
//
// The Wet Bulb Globe Temperature is approximated without solar radiation or
// wind inputs:
//
//	Tw   = T·atan(0.151977·√(rh+8.313659)) + atan(T+rh) − atan(rh−1.676331)
//	       + 0.00391838·rh^1.5·atan(0.023101·rh) − 4.686035     (Stull)
//	Tg   = 17.68 + 0.993·T − 0.0737·2.5 − 0.754·rh/100
//	WBGT = 0.7·Tw + 0.2·Tg + 0.1·T
//
// Humidity enters Stull's formula in percent, not as a fraction. Results are
// compared against historical assessments, so the formula is kept as is.
//
// # Effective WBGT
//
// Risk factors shift the raw index before classification:
//
//	Hydration: Clear +0 | Pale Yellow +0.5 | Dark Brown +5 | other +0
//	Uniform:   PT Kit +0 | Full Battle Order +3 | other +0
//
// # Heat Categories
//
//	WBGT        Category  Min. continuous activity
//	≤ 29.9      White     60 min
//	30.0–30.9   Green     45 min
//	31.0–31.9   Yellow    30 min
//	32.0–32.9   Red       30 min
//	≥ 33.0      Black     15 min
//
// # Work/Rest Compliance
//
// When the observed work bout is shorter than the category's minimum
// continuous activity, the bout is low risk outright. Otherwise the observed
// rest:work ratio must meet the recommended minimum for the activity
// intensity and effective WBGT (see [recommendedRatios]).
//
// # Range Tables
//
// All tables are ordered slices evaluated top to bottom. A row matches when
// the value is at or above its lower bound and either within its declared
// upper bound or below the next row's lower bound. A boundary shared by two
// rows belongs to the earlier row, and values between a declared upper bound
// and the next row (e.g. 30.95) stay in the earlier row. NaN matches nothing.
package domain
