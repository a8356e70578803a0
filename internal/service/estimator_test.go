package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlxd/internal/model"
)

type fakeVisionClient struct {
	enabled bool
	replies []fakeReply
	calls   int

	lastPrompt string
	lastImage  []byte
	lastMime   string
}

type fakeReply struct {
	text string
	err  error
}

func (f *fakeVisionClient) IsEnabled() bool { return f.enabled }

func (f *fakeVisionClient) GenerateContent(_ context.Context, prompt string, image []byte, mimeType string) (string, error) {
	f.lastPrompt, f.lastImage, f.lastMime = prompt, image, mimeType
	i := f.calls
	f.calls++
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i].text, f.replies[i].err
}

// fakeCatalog does a case-insensitive substring match over its products, cheapest first
type fakeCatalog struct {
	products []model.Product
	err      error
	queries  [][]string
}

func (f *fakeCatalog) FindActiveProductsByNameContains(_ context.Context, fragments []string, limit int) ([]model.Product, error) {
	f.queries = append(f.queries, fragments)
	if f.err != nil {
		return nil, f.err
	}

	var best *model.Product
	for i := range f.products {
		p := f.products[i]
		if !p.IsActive {
			continue
		}
		for _, frag := range fragments {
			if strings.Contains(strings.ToLower(p.Name), strings.ToLower(frag)) {
				if best == nil || p.Price < best.Price {
					best = &f.products[i]
				}
				break
			}
		}
	}
	if best == nil {
		return nil, nil
	}
	return []model.Product{*best}, nil
}

func noSleepPolicy() RetryPolicy {
	p := DefaultRetryPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func cementCatalog() *fakeCatalog {
	return &fakeCatalog{products: []model.Product{
		{ID: "p-cement", Name: "Xi măng Hà Tiên 50kg", Price: 85000, Unit: "bao", IsActive: true},
		{ID: "p-cement-old", Name: "Xi măng Nghi Sơn", Price: 70000, Unit: "bao", IsActive: false},
		{ID: "p-tile", Name: "Gạch Viglacera 60x60", Price: 12000, Unit: "viên", IsActive: true},
	}}
}

const flooringReply = "```json\n{\"rooms\":[{\"name\":\"Phòng khách\",\"length\":7,\"width\":5}],\"totalArea\":35,\"confidence\":0.9,\"notes\":\"mặt bằng tầng trệt\"}\n```"

func TestEstimator_NotConfigured(t *testing.T) {
	tests := []struct {
		name   string
		client VisionClient
	}{
		{"nil client", nil},
		{"disabled client", &fakeVisionClient{enabled: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := NewEstimator(tt.client, cementCatalog(), noSleepPolicy(), nil)

			img := est.AnalyzeFloorPlanImage(context.Background(), "aGVsbG8=", model.ProjectFlooring)
			txt := est.EstimateFromText(context.Background(), "phòng 5x7", model.ProjectGeneral)

			for _, res := range []*model.EstimatorResult{img, txt} {
				assert.False(t, res.Success)
				assert.Equal(t, MsgNotConfigured, res.Error)
				assert.NotNil(t, res.Rooms)
				assert.NotNil(t, res.Materials)
			}
			assert.Equal(t, model.ProjectFlooring, img.ProjectType)
		})
	}
}

func TestEstimator_AnalyzeFloorPlanImage(t *testing.T) {
	client := &fakeVisionClient{enabled: true, replies: []fakeReply{{text: flooringReply}}}
	catalog := cementCatalog()
	est := NewEstimator(client, catalog, noSleepPolicy(), nil)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-png"))
	res := est.AnalyzeFloorPlanImage(context.Background(), payload, model.ProjectFlooring)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, []byte("fake-png"), client.lastImage)
	assert.Equal(t, "image/png", client.lastMime)
	assert.Contains(t, client.lastPrompt, "flooring")

	assert.Equal(t, 35.0, res.TotalArea)
	assert.Equal(t, model.ParsedOK, res.ParseStatus)
	assert.Equal(t, 0.9, res.Confidence)
	assert.Equal(t, "mặt bằng tầng trệt", res.RawAnalysis)
	require.Len(t, res.Materials, 4)

	materials := byCode(t, res.Materials)
	cement := materials[model.MaterialCement]
	require.NotNil(t, cement.Price)
	assert.Equal(t, "Xi măng Hà Tiên 50kg", cement.ProductName)
	assert.Equal(t, 85000.0, *cement.Price)
	assert.Equal(t, "p-cement", *cement.ProductID)
	assert.Equal(t, 11.0, cement.Quantity)

	tile := materials[model.MaterialFloorTile]
	require.NotNil(t, tile.Price)
	assert.Equal(t, 105.0, tile.Quantity)

	assert.Nil(t, materials[model.MaterialSand].Price)
	assert.Equal(t, "Cát xây dựng", materials[model.MaterialSand].ProductName)

	assert.Equal(t, 11*85000.0+105*12000.0, res.TotalEstimatedCost)
	assert.Equal(t, model.ValidationVerified, res.ValidationStatus)
}

func TestEstimator_ImagePayloadErrors(t *testing.T) {
	client := &fakeVisionClient{enabled: true, replies: []fakeReply{{text: flooringReply}}}
	est := NewEstimator(client, nil, noSleepPolicy(), nil)

	res := est.AnalyzeFloorPlanImage(context.Background(), "data:image/jpeg;base64,!!!not-base64!!!", model.ProjectGeneral)
	assert.False(t, res.Success)
	assert.Equal(t, MsgInvalidImage, res.Error)

	res = est.AnalyzeFloorPlanImage(context.Background(), "   ", model.ProjectGeneral)
	assert.False(t, res.Success)
	assert.Equal(t, MsgEmptyImage, res.Error)

	assert.Zero(t, client.calls)
}

func TestEstimator_EstimateFromText(t *testing.T) {
	client := &fakeVisionClient{enabled: true, replies: []fakeReply{{text: `{"rooms":[],"totalArea":20,"confidence":0.7}`}}}
	est := NewEstimator(client, &fakeCatalog{}, noSleepPolicy(), nil)

	res := est.EstimateFromText(context.Background(), "Nhà cấp 4 diện tích 20m2", model.ProjectGeneral)

	require.True(t, res.Success, res.Error)
	assert.Nil(t, client.lastImage)
	assert.Contains(t, client.lastPrompt, "Nhà cấp 4 diện tích 20m2")
	assert.Equal(t, 20.0, res.TotalArea)
	assert.Len(t, res.Materials, 5)
	assert.Zero(t, res.TotalEstimatedCost, "no catalog matches")

	empty := est.EstimateFromText(context.Background(), "  ", model.ProjectGeneral)
	assert.False(t, empty.Success)
	assert.Equal(t, MsgEmptyText, empty.Error)
}

func TestEstimator_RetriesTransientFailures(t *testing.T) {
	client := &fakeVisionClient{enabled: true, replies: []fakeReply{
		{err: &APIError{Status: 503, Body: "overloaded"}},
		{err: &APIError{Status: 503, Body: "overloaded"}},
		{text: flooringReply},
	}}
	est := NewEstimator(client, nil, noSleepPolicy(), nil)

	var stages []string
	res := est.AnalyzeFloorPlanImageStream(context.Background(), "aGVsbG8=", model.ProjectFlooring, func(stage string, _ any) {
		stages = append(stages, stage)
	})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, []string{
		StageAnalyzing, StageRetrying, StageRetrying, StageParsed, StageCalculated, StageEnriched,
	}, stages)
}

func TestEstimator_ModelFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
		wantError string
	}{
		{
			name:      "overload exhausts retries",
			err:       &APIError{Status: 503, Body: "busy"},
			wantCalls: 3,
			wantError: MsgServiceBusy,
		},
		{
			name:      "non-transient error is not retried",
			err:       &APIError{Status: 400, Body: "bad image"},
			wantCalls: 1,
			wantError: "Lỗi phân tích AI: API request failed with status 400: bad image",
		},
		{
			name:      "transport error",
			err:       errors.New("dial tcp: connection refused"),
			wantCalls: 1,
			wantError: "Lỗi phân tích AI: dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeVisionClient{enabled: true, replies: []fakeReply{{err: tt.err}}}
			est := NewEstimator(client, nil, noSleepPolicy(), nil)

			res := est.EstimateFromText(context.Background(), "phòng 4x5", model.ProjectPainting)

			assert.False(t, res.Success)
			assert.Equal(t, tt.wantError, res.Error)
			assert.Equal(t, tt.wantCalls, client.calls)
			assert.Equal(t, model.ProjectPainting, res.ProjectType)
		})
	}
}

func TestEstimator_UnparseableReplyStillSucceeds(t *testing.T) {
	client := &fakeVisionClient{enabled: true, replies: []fakeReply{{text: `Tổng diện tích "totalArea": 50 nhưng tôi không chắc {`}}}
	est := NewEstimator(client, nil, noSleepPolicy(), nil)

	res := est.EstimateFromText(context.Background(), "nhà 5x10", model.ProjectGeneral)

	require.True(t, res.Success)
	assert.Equal(t, model.ParsedFailed, res.ParseStatus)
	assert.Empty(t, res.Rooms)
	assert.Equal(t, 50.0, res.TotalArea)
	assert.Equal(t, failedConfidence, res.Confidence)
	assert.NotEmpty(t, res.Materials)
}

func TestEnrichMaterialsWithProducts(t *testing.T) {
	t.Run("match overwrites catalog fields", func(t *testing.T) {
		catalog := cementCatalog()
		est := NewEstimator(nil, catalog, noSleepPolicy(), nil)
		input := []model.MaterialEstimate{{
			Code: model.MaterialCement, ProductName: "Xi măng (bao 50kg)", Quantity: 11, Unit: "bao", Reason: "r",
		}}

		got := est.EnrichMaterialsWithProducts(context.Background(), input)

		require.Len(t, got, 1)
		require.NotNil(t, got[0].Price)
		require.NotNil(t, got[0].ProductID)
		assert.Equal(t, 85000.0, *got[0].Price)
		assert.Equal(t, "p-cement", *got[0].ProductID)
		assert.Equal(t, "Xi măng Hà Tiên 50kg", got[0].ProductName)
		assert.Equal(t, "bao", got[0].Unit)
		assert.Equal(t, 11.0, got[0].Quantity)
		assert.Equal(t, [][]string{{"Xi măng", "Xi"}}, catalog.queries)

		assert.Nil(t, input[0].Price, "input slice is not mutated")
	})

	t.Run("miss keeps synthetic fields", func(t *testing.T) {
		est := NewEstimator(nil, &fakeCatalog{}, noSleepPolicy(), nil)
		input := []model.MaterialEstimate{{ProductName: "Đá 1×2 xây dựng", Quantity: 2, Unit: "m³"}}

		got := est.EnrichMaterialsWithProducts(context.Background(), input)

		assert.Equal(t, input, got)
		assert.Nil(t, got[0].Price)
		assert.Nil(t, got[0].ProductID)
	})

	t.Run("lookup error is a miss", func(t *testing.T) {
		est := NewEstimator(nil, &fakeCatalog{err: errors.New("db down")}, noSleepPolicy(), nil)
		input := []model.MaterialEstimate{{ProductName: "Xi măng (bao 50kg)", Quantity: 1, Unit: "bao"}}

		got := est.EnrichMaterialsWithProducts(context.Background(), input)

		assert.Nil(t, got[0].Price)
		assert.Equal(t, "Xi măng (bao 50kg)", got[0].ProductName)
	})
}

func TestValidateAgainstStandards(t *testing.T) {
	cement := func(q float64) []model.MaterialEstimate {
		return []model.MaterialEstimate{{Code: model.MaterialCement, Quantity: q}}
	}

	tests := []struct {
		name        string
		area        float64
		projectType model.ProjectType
		materials   []model.MaterialEstimate
		want        model.ValidationStatus
	}{
		{"zero area", 0, model.ProjectGeneral, nil, model.ValidationWarning},
		{"normal general", 100, model.ProjectGeneral, cement(150), model.ValidationVerified},
		{"too little cement", 100, model.ProjectGeneral, cement(20), model.ValidationOutlier},
		{"too much cement", 100, model.ProjectGeneral, cement(400), model.ValidationOutlier},
		{"flooring cement is not bag-per-m² norm", 35, model.ProjectFlooring, cement(11), model.ValidationVerified},
		{"very large project", 1500, model.ProjectGeneral, cement(2250), model.ValidationWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := ValidateAgainstStandards(tt.area, tt.projectType, tt.materials)
			assert.Equal(t, tt.want, status)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestDecodeImagePayload(t *testing.T) {
	data, mime, err := decodeImagePayload("data:image/webp;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "image/webp", mime)

	data, mime, err = decodeImagePayload("aGVsbG8")
	require.NoError(t, err, "missing padding is tolerated")
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "image/jpeg", mime)

	_, _, err = decodeImagePayload("data:image/png;base64,")
	assert.Error(t, err)
}
