package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"vlxd/internal/model"
	"vlxd/internal/utils"
)

const (
	defaultConfidence  = 0.8
	fallbackConfidence = 0.5
	failedConfidence   = 0.1
)

// analysisSchema is what a trusted model reply looks like
const analysisSchema = `{
  "type": "object",
  "required": ["rooms"],
  "properties": {
    "rooms": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "length", "width"],
        "properties": {
          "name":   {"type": "string"},
          "length": {"type": "number", "minimum": 0},
          "width":  {"type": "number", "minimum": 0},
          "height": {"type": "number", "minimum": 0}
        }
      }
    },
    "totalArea":  {"type": "number", "minimum": 0},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "notes":      {"type": "string"}
  }
}`

var analysisValidator = mustCompileSchema(analysisSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid analysis schema: %v", err))
	}
	return compiled
}

// floorPlanAnalysis is the decoded model reply
type floorPlanAnalysis struct {
	Rooms      []analysisRoom `json:"rooms"`
	TotalArea  flexFloat      `json:"totalArea"`
	Confidence *flexFloat     `json:"confidence"`
	Notes      string         `json:"notes"`
}

type analysisRoom struct {
	Name   string    `json:"name"`
	Length flexFloat `json:"length"`
	Width  flexFloat `json:"width"`
	Height flexFloat `json:"height"`
}

// flexFloat accepts 4.5, "4.5", "4,5m" and null
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		s = strings.TrimRightFunc(s, func(r rune) bool {
			return (r < '0' || r > '9') && r != '.'
		})
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// parsedAnalysis is the trust-tagged outcome of reading the model reply
type parsedAnalysis struct {
	Status     model.ParseStatus
	Rooms      []model.RoomDimension
	TotalArea  float64
	Confidence float64
	Notes      string
	Problems   []string // schema violations or decode errors
}

// parseAnalysis runs the model text through the staged JSON parser and the schema.
//
//	direct JSON, schema ok       -> ok
//	salvaged JSON or schema miss -> fallback
//	nothing decodable            -> failed, rooms empty, totalArea best effort
func parseAnalysis(text string) parsedAnalysis {
	var raw interface{}
	outcome := utils.ParseModelJSON(text, &raw)
	if outcome == utils.ParseFailed {
		return failedAnalysis(text, nil)
	}

	status := model.ParsedOK
	if outcome == utils.ParseSalvaged {
		status = model.ParsedFallback
	}

	problems := validateAnalysisSchema(raw)
	if len(problems) > 0 {
		status = model.ParsedFallback
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return failedAnalysis(text, append(problems, err.Error()))
	}
	var a floorPlanAnalysis
	if err := json.Unmarshal(encoded, &a); err != nil {
		return failedAnalysis(text, append(problems, err.Error()))
	}

	rooms := make([]model.RoomDimension, 0, len(a.Rooms))
	var roomsArea float64
	for i, r := range a.Rooms {
		if r.Length <= 0 || r.Width <= 0 {
			problems = append(problems, fmt.Sprintf("room %d has no usable dimensions", i))
			continue
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = fmt.Sprintf("Phòng %d", i+1)
		}
		room := model.NewRoomDimension(name, float64(r.Length), float64(r.Width), float64(r.Height))
		rooms = append(rooms, room)
		roomsArea += room.Area
	}

	// The reported footprint covers rooms the model did not itemize
	totalArea := float64(a.TotalArea)
	if totalArea <= 0 || math.IsNaN(totalArea) || math.IsInf(totalArea, 0) {
		totalArea = roomsArea
	}

	confidence := defaultConfidence
	if a.Confidence != nil {
		confidence = clamp01(float64(*a.Confidence))
	}
	if status == model.ParsedFallback {
		confidence = math.Min(confidence, fallbackConfidence)
	}

	return parsedAnalysis{
		Status:     status,
		Rooms:      rooms,
		TotalArea:  totalArea,
		Confidence: confidence,
		Notes:      a.Notes,
		Problems:   problems,
	}
}

func failedAnalysis(text string, problems []string) parsedAnalysis {
	p := parsedAnalysis{
		Status:     model.ParsedFailed,
		Rooms:      []model.RoomDimension{},
		Confidence: failedConfidence,
		Problems:   problems,
	}
	if v, ok := utils.FindNumberField(text, "totalArea"); ok && v > 0 {
		p.TotalArea = v
	}
	return p
}

func validateAnalysisSchema(raw interface{}) []string {
	result, err := analysisValidator.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return problems
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return defaultConfidence
	}
	return math.Max(0, math.Min(1, v))
}

// buildAnalysisPrompt asks for strict JSON rooms/area/confidence.
// hasImage switches between the floor plan and the text description wording.
func buildAnalysisPrompt(projectType model.ProjectType, description string, hasImage bool) string {
	var b strings.Builder

	b.WriteString("You are a professional Vietnamese construction surveyor (kỹ sư dự toán).\n")
	if hasImage {
		b.WriteString("Analyze the attached image. It may be a Vietnamese floor plan (bản vẽ mặt bằng), a sketch or a photo of a room.\n")
		b.WriteString("1. Identify every visible room and its length and width in meters.\n")
		b.WriteString("2. Look for a scale reference: dimension lines (e.g. 4000 = 4m), a scale bar or a door marked 900.\n")
		b.WriteString("3. If no dimensions are printed, estimate from visual cues: a standard door is about 0.9m wide, a floor tile is usually 0.6m.\n")
	} else {
		b.WriteString("Read the following project description written in Vietnamese and extract the rooms and their dimensions in meters.\n")
		b.WriteString("Description:\n\"\"\"\n")
		b.WriteString(strings.TrimSpace(description))
		b.WriteString("\n\"\"\"\n")
		b.WriteString("If only a total area is given (e.g. \"nhà 5x20\", \"phòng 35m2\"), report it in totalArea and describe the rooms you can infer.\n")
	}
	fmt.Fprintf(&b, "Project type: %s (%s). Use it as context only; do not compute materials.\n", projectType, projectTypeLabel(projectType))
	b.WriteString(`
Return ONLY valid JSON, no markdown, no commentary:
{
  "rooms": [{"name": "string", "length": number, "width": number}],
  "totalArea": number,
  "confidence": number between 0 and 1,
  "notes": "string"
}
`)

	return b.String()
}

func projectTypeLabel(pt model.ProjectType) string {
	switch pt {
	case model.ProjectFlooring:
		return "lát nền"
	case model.ProjectPainting:
		return "sơn tường"
	case model.ProjectTiling:
		return "ốp tường"
	default:
		return "xây dựng tổng hợp"
	}
}
