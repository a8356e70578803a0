package service

import (
	"fmt"
	"math"

	"vlxd/internal/model"
)

// CalculateMaterials derives the bill of materials for a floor area.
// The result depends only on its inputs; rooms are used by painting to get
// the wall area, the other project types work from totalArea alone.
func CalculateMaterials(totalArea float64, projectType model.ProjectType, rooms []model.RoomDimension) []model.MaterialEstimate {
	if totalArea < 0 || math.IsNaN(totalArea) || math.IsInf(totalArea, 0) {
		totalArea = 0
	}

	switch projectType {
	case model.ProjectFlooring:
		return flooringMaterials(totalArea)
	case model.ProjectPainting:
		return paintingMaterials(totalArea, rooms)
	case model.ProjectTiling:
		return tilingMaterials(totalArea)
	default:
		return generalMaterials(totalArea)
	}
}

func flooringMaterials(area float64) []model.MaterialEstimate {
	cementKg := ceil(area * flooringCementKgPerM2)
	sand := math.Max(sandForCementKg(cementKg), flooringMinSandM3)
	tiles := ceil(area / floorTileAreaM2 * floorTileWastage)
	grout := ceil(area * groutKgPerM2)

	return []model.MaterialEstimate{
		{
			Code:        model.MaterialCement,
			ProductName: nameCement,
			Quantity:    bagsForKg(cementKg),
			Unit:        unitBag,
			Reason:      fmt.Sprintf("Lót nền: %.0fkg cho %.1fm² (%.0fkg/m²)", cementKg, area, flooringCementKgPerM2),
		},
		{
			Code:        model.MaterialSand,
			ProductName: nameSand,
			Quantity:    sand,
			Unit:        unitM3,
			Reason:      fmt.Sprintf("Vữa lót 1:3 theo khối lượng xi măng %.0fkg (tối thiểu %.1fm³)", cementKg, flooringMinSandM3),
		},
		{
			Code:        model.MaterialFloorTile,
			ProductName: nameFloorTile,
			Quantity:    tiles,
			Unit:        unitPiece,
			Reason:      fmt.Sprintf("Diện tích %.1fm² / 0.36m²/viên + 8%% hao hụt", area),
		},
		{
			Code:        model.MaterialGrout,
			ProductName: nameGrout,
			Quantity:    grout,
			Unit:        unitKg,
			Reason:      fmt.Sprintf("Chà ron: %.1fkg/m² cho %.1fm²", groutKgPerM2, area),
		},
	}
}

func paintingMaterials(area float64, rooms []model.RoomDimension) []model.MaterialEstimate {
	wallArea, basis := paintableWallArea(area, rooms)
	primerL := ceil(wallArea / primerCoverageM2PerL)
	paintL := ceil(wallArea * paintCoats / paintCoverageM2PerL)

	return []model.MaterialEstimate{
		{
			Code:        model.MaterialPrimer,
			ProductName: namePrimer,
			Quantity:    cansForLiters(primerL),
			Unit:        unitCan,
			Reason:      fmt.Sprintf("Sơn lót: %.0f lít cho %.1fm² tường (%.0fm²/lít, %s)", primerL, wallArea, primerCoverageM2PerL, basis),
		},
		{
			Code:        model.MaterialWallPaint,
			ProductName: nameWallPaint,
			Quantity:    cansForLiters(paintL),
			Unit:        unitCan,
			Reason:      fmt.Sprintf("Sơn phủ 2 lớp: %.0f lít cho %.1fm² tường (%.0fm²/lít)", paintL, wallArea, paintCoverageM2PerL),
		},
	}
}

// paintableWallArea sums 2×(L+W)×H over rooms and deducts 15% for openings.
// Without rooms the floor area is treated as one square room of default height.
func paintableWallArea(area float64, rooms []model.RoomDimension) (float64, string) {
	var gross float64
	for _, r := range rooms {
		h := r.Height
		if h <= 0 {
			h = model.DefaultRoomHeight
		}
		gross += 2 * (r.Length + r.Width) * h
	}

	if len(rooms) > 0 {
		return gross * openingDeduction, fmt.Sprintf("%d phòng, trừ 15%% cửa", len(rooms))
	}

	gross = 4 * math.Sqrt(area) * model.DefaultRoomHeight
	return gross * openingDeduction, "ước tính theo diện tích sàn, trừ 15% cửa"
}

func tilingMaterials(area float64) []model.MaterialEstimate {
	wallTileArea := area * tilingWallFactor
	cementKg := ceil(wallTileArea * tilingCementKgPerM2)
	sand := math.Max(sandForCementKg(cementKg), tilingMinSandM3)
	tiles := ceil(wallTileArea / wallTileAreaM2 * wallTileWastage)

	return []model.MaterialEstimate{
		{
			Code:        model.MaterialCement,
			ProductName: nameCement,
			Quantity:    bagsForKg(cementKg),
			Unit:        unitBag,
			Reason:      fmt.Sprintf("Vữa ốp: %.0fkg cho %.1fm² tường (%.0fkg/m²)", cementKg, wallTileArea, tilingCementKgPerM2),
		},
		{
			Code:        model.MaterialSand,
			ProductName: nameSand,
			Quantity:    sand,
			Unit:        unitM3,
			Reason:      fmt.Sprintf("Vữa ốp 1:3 theo khối lượng xi măng %.0fkg (tối thiểu %.1fm³)", cementKg, tilingMinSandM3),
		},
		{
			Code:        model.MaterialWallTile,
			ProductName: nameWallTile,
			Quantity:    tiles,
			Unit:        unitPiece,
			Reason:      fmt.Sprintf("Tường ốp %.1fm² (%.1f × sàn) / 0.18m²/viên + 10%% hao hụt", wallTileArea, tilingWallFactor),
		},
	}
}

func generalMaterials(area float64) []model.MaterialEstimate {
	bricks := ceil(area * bricksPerM2 * brickWastage)
	cement := ceil(area * generalCementBagsM2)
	sand := math.Max(ceilTenth(area*generalSandM3PerM2), generalMinBulkM3)
	gravel := math.Max(ceilTenth(area*generalGravelM3PerM2), generalMinBulkM3)
	tiles := ceil(area * floorTileWastage / floorTileAreaM2)

	return []model.MaterialEstimate{
		{
			Code:        model.MaterialBrick,
			ProductName: nameBrick,
			Quantity:    bricks,
			Unit:        unitPiece,
			Reason:      fmt.Sprintf("Xây tường: %.0f viên/m² cho %.1fm² + 5%% hao hụt", bricksPerM2, area),
		},
		{
			Code:        model.MaterialCement,
			ProductName: nameCement,
			Quantity:    cement,
			Unit:        unitBag,
			Reason:      fmt.Sprintf("Móng, khung và xây trát: %.1f bao/m² cho %.1fm²", generalCementBagsM2, area),
		},
		{
			Code:        model.MaterialSand,
			ProductName: nameSand,
			Quantity:    sand,
			Unit:        unitM3,
			Reason:      fmt.Sprintf("Cát: %.2fm³/m² cho %.1fm² (tối thiểu %.0fm³)", generalSandM3PerM2, area, generalMinBulkM3),
		},
		{
			Code:        model.MaterialGravel,
			ProductName: nameGravel,
			Quantity:    gravel,
			Unit:        unitM3,
			Reason:      fmt.Sprintf("Bê tông: %.1fm³ đá/m² cho %.1fm² (tối thiểu %.0fm³)", generalGravelM3PerM2, area, generalMinBulkM3),
		},
		{
			Code:        model.MaterialFloorTile,
			ProductName: nameFloorTile,
			Quantity:    tiles,
			Unit:        unitPiece,
			Reason:      fmt.Sprintf("Lát nền %.1fm² + 8%% hao hụt", area),
		},
	}
}
