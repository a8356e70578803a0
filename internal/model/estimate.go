package model

import "strings"

// ProjectType selects which quantity formulas apply to an estimation
type ProjectType string

const (
	ProjectFlooring ProjectType = "flooring"
	ProjectPainting ProjectType = "painting"
	ProjectTiling   ProjectType = "tiling"
	ProjectGeneral  ProjectType = "general"
)

// ParseProjectType maps a request value onto a known project type.
// Unknown or empty values fall back to general.
func ParseProjectType(s string) ProjectType {
	switch ProjectType(strings.ToLower(strings.TrimSpace(s))) {
	case ProjectFlooring:
		return ProjectFlooring
	case ProjectPainting:
		return ProjectPainting
	case ProjectTiling:
		return ProjectTiling
	default:
		return ProjectGeneral
	}
}

// DefaultRoomHeight is used when the model does not report a ceiling height (meters)
const DefaultRoomHeight = 3.0

// RoomDimension is one room detected on a floor plan, in meters
type RoomDimension struct {
	Name   string  `json:"name"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Area   float64 `json:"area"` // length × width, m²
}

// NewRoomDimension builds a room and derives its area
func NewRoomDimension(name string, length, width, height float64) RoomDimension {
	if height <= 0 {
		height = DefaultRoomHeight
	}
	return RoomDimension{
		Name:   name,
		Length: length,
		Width:  width,
		Height: height,
		Area:   length * width,
	}
}

// MaterialEstimate is one line of the bill of materials
type MaterialEstimate struct {
	Code        string   `json:"code"`
	ProductName string   `json:"productName"`
	ProductID   *string  `json:"productId,omitempty"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	Reason      string   `json:"reason"`
	Price       *float64 `json:"price,omitempty"`
}

// Material codes
const (
	MaterialCement    = "cement"
	MaterialSand      = "sand"
	MaterialGravel    = "gravel"
	MaterialBrick     = "brick"
	MaterialFloorTile = "floor_tile"
	MaterialWallTile  = "wall_tile"
	MaterialGrout     = "grout"
	MaterialPrimer    = "primer"
	MaterialWallPaint = "wall_paint"
)

// ParseStatus tells how much of the model output could be trusted
type ParseStatus string

const (
	ParsedOK       ParseStatus = "ok"       // direct JSON that passed schema validation
	ParsedFallback ParseStatus = "fallback" // salvaged JSON or schema violations
	ParsedFailed   ParseStatus = "failed"   // nothing usable, defaults applied
)

// ValidationStatus is the result of the industry-standard sanity check
type ValidationStatus string

const (
	ValidationVerified ValidationStatus = "verified"
	ValidationOutlier  ValidationStatus = "outlier"
	ValidationWarning  ValidationStatus = "warning"
)

// EstimatorResult is the only output artifact of an estimation
type EstimatorResult struct {
	Success            bool               `json:"success"`
	ProjectType        ProjectType        `json:"projectType"`
	Rooms              []RoomDimension    `json:"rooms"`
	TotalArea          float64            `json:"totalArea"`
	Materials          []MaterialEstimate `json:"materials"`
	TotalEstimatedCost float64            `json:"totalEstimatedCost"`
	Confidence         float64            `json:"confidence"`
	ParseStatus        ParseStatus        `json:"parseStatus,omitempty"`
	ValidationStatus   ValidationStatus   `json:"validationStatus"`
	ValidationMessage  string             `json:"validationMessage,omitempty"`
	RawAnalysis        string             `json:"rawAnalysis,omitempty"`
	Error              string             `json:"error,omitempty"`
}

// FailedResult returns a structurally valid result carrying an error message
func FailedResult(projectType ProjectType, message string) *EstimatorResult {
	return &EstimatorResult{
		Success:          false,
		ProjectType:      projectType,
		Rooms:            []RoomDimension{},
		Materials:        []MaterialEstimate{},
		ValidationStatus: ValidationWarning,
		Error:            message,
	}
}

// ImageEstimateRequest is the body of POST /api/v1/estimator/image
type ImageEstimateRequest struct {
	Image       string `json:"image" binding:"required"`
	ProjectType string `json:"projectType"`
}

// TextEstimateRequest is the body of POST /api/v1/estimator/text
type TextEstimateRequest struct {
	Description string `json:"description" binding:"required"`
	ProjectType string `json:"projectType"`
}
