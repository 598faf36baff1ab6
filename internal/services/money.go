package services

import "math"

// Monetary amounts are stored to 2 decimals, NAVs to 4, units to 6.

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

func round6(v float64) float64 { return math.Round(v*1000000) / 1000000 }
