package service

import "math"

// Material norms for Vietnamese residential work (TCVN, Circular 12/2021/TT-BXD yields).
const (
	cementBagKg        = 50.0
	sandDensityKgPerM3 = 1500.0
	sandPerCementMass  = 3.0 // mortar mix 1:3 cement:sand by mass

	// flooring: levelling screed + 60×60 floor tiles
	flooringCementKgPerM2 = 15.0
	flooringMinSandM3     = 0.5
	floorTileAreaM2       = 0.36
	floorTileWastage      = 1.08
	groutKgPerM2          = 0.5

	// painting
	openingDeduction     = 0.85 // 15% of wall area is doors/windows
	primerCoverageM2PerL = 10.0
	paintCoverageM2PerL  = 8.0
	paintCoats           = 2.0
	paintCanLiters       = 5.0

	// tiling: 30×60 wall tiles
	tilingWallFactor    = 2.5 // wall tile area per m² of floor
	tilingCementKgPerM2 = 5.0
	tilingMinSandM3     = 0.5
	wallTileAreaM2      = 0.18
	wallTileWastage     = 1.10

	// general construction per m² of floor
	bricksPerM2          = 75.0
	brickWastage         = 1.05
	generalCementBagsM2  = 1.5
	generalSandM3PerM2   = 0.15
	generalGravelM3PerM2 = 0.1
	generalMinBulkM3     = 1.0
)

// Validation bounds for the self-check
const (
	minCementBagsPerM2 = 0.5
	maxCementBagsPerM2 = 3.5
	maxTypicalAreaM2   = 1000.0
)

// Synthetic catalog names. Enrichment searches the catalog by their
// first word and pre-parenthesis prefix.
const (
	nameCement    = "Xi măng (bao 50kg)"
	nameSand      = "Cát xây dựng"
	nameGravel    = "Đá 1×2 xây dựng"
	nameBrick     = "Gạch ống 8×8×18cm"
	nameFloorTile = "Gạch lát nền 60×60cm"
	nameWallTile  = "Gạch ốp tường 30×60cm"
	nameGrout     = "Keo chà ron"
	namePrimer    = "Sơn lót (thùng 5L)"
	nameWallPaint = "Sơn nước (thùng 5L)"
)

const (
	unitBag   = "bao"
	unitM3    = "m³"
	unitPiece = "viên"
	unitKg    = "kg"
	unitCan   = "thùng"
)

// ceil rounds up after snapping to 1e-9, so that values such as
// 35/0.36*1.08 = 105.00000000000001 count as 105.
func ceil(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x < 1e6 {
		x = math.Round(x*1e9) / 1e9
	}
	return math.Ceil(x)
}

// ceilTenth rounds up to one decimal place
func ceilTenth(x float64) float64 {
	return ceil(x*10) / 10
}

// bagsForKg converts a cement mass to whole 50 kg bags
func bagsForKg(kg float64) float64 {
	return ceil(kg / cementBagKg)
}

// sandForCementKg is the 1:3 mortar sand volume in m³, to one decimal
func sandForCementKg(kg float64) float64 {
	return ceilTenth(kg * sandPerCementMass / sandDensityKgPerM3)
}

// cansForLiters converts liters to whole 5 L cans
func cansForLiters(liters float64) float64 {
	return ceil(liters / paintCanLiters)
}
