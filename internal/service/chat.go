package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"vlxd/internal/chatbot"
	"vlxd/internal/logger"
	"vlxd/internal/metrics"
	"vlxd/internal/model"
	"vlxd/internal/utils"
)

const (
	priceLookupLimit = 5
	// MsgNoPriceFound is shown when a quick price keyword has no active product
	MsgNoPriceFound = "Hiện chưa có báo giá cho %s trên hệ thống. Vui lòng gọi hotline %s để được báo giá nhanh."
)

// ChatCatalog resolves accent-free search terms to active products
type ChatCatalog interface {
	FindActiveProductsByNormalizedName(ctx context.Context, term string, limit int) ([]model.Product, error)
}

// ChatService answers what it can from the rule tables and the catalog and
// flags everything else for the model-backed responder.
type ChatService struct {
	triage  *chatbot.Triage
	catalog ChatCatalog
	logger  *zap.Logger
}

// NewChatService uses the default triage when t is nil
func NewChatService(t *chatbot.Triage, catalog ChatCatalog, log *zap.Logger) *ChatService {
	if t == nil {
		t = chatbot.Default()
	}
	return &ChatService{triage: t, catalog: catalog, logger: logger.OrNop(log)}
}

// Reply triages message and resolves catalog follow-ups
func (s *ChatService) Reply(ctx context.Context, message string) *model.ChatReply {
	result, rule := s.triage.Classify(message)
	metrics.TriageRoutes.WithLabelValues(string(result.Route), rule).Inc()

	reply := &model.ChatReply{
		Triage:      result,
		Response:    result.Response,
		Suggestions: result.Suggestions,
	}

	switch result.Route {
	case model.RouteAnswer:
		return reply
	case model.RouteProductLookup:
		s.resolvePrice(ctx, result.ProductKeyword, reply)
	case model.RouteComparison:
		s.resolveComparison(ctx, result.ComparisonProducts, reply)
	default:
		reply.Fallback = true
	}
	return reply
}

func (s *ChatService) resolvePrice(ctx context.Context, keyword string, reply *model.ChatReply) {
	if s.catalog == nil {
		reply.Fallback = true
		return
	}

	products, err := s.catalog.FindActiveProductsByNormalizedName(ctx, utils.NormalizeVietnamese(keyword), priceLookupLimit)
	if err != nil {
		s.logger.Warn("price lookup failed", zap.String("keyword", keyword), zap.Error(err))
		reply.Fallback = true
		return
	}

	reply.Products = products
	reply.Response = formatPriceList(keyword, products)
}

func (s *ChatService) resolveComparison(ctx context.Context, names []string, reply *model.ChatReply) {
	if s.catalog == nil {
		reply.Fallback = true
		return
	}

	seen := make(map[string]bool, len(names))
	var found []model.Product
	for _, name := range names {
		products, err := s.catalog.FindActiveProductsByNormalizedName(ctx, name, 1)
		if err != nil {
			s.logger.Warn("comparison lookup failed", zap.String("product", name), zap.Error(err))
			reply.Fallback = true
			return
		}
		if len(products) == 0 || seen[products[0].ID] {
			continue
		}
		seen[products[0].ID] = true
		found = append(found, products[0])
	}

	views := make([]model.ComparisonProduct, 0, len(found))
	for _, p := range found {
		views = append(views, model.NewComparisonProduct(p))
	}

	reply.Products = found
	reply.Response = chatbot.GenerateComparisonResponse(views)
}

func formatPriceList(keyword string, products []model.Product) string {
	if len(products) == 0 {
		return fmt.Sprintf(MsgNoPriceFound, keyword, chatbot.StoreInformation().Hotline)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💰 **Giá %s tham khảo:**\n", keyword)
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: **%sđ**/%s\n", p.Name, utils.FormatVND(p.Price), p.Unit)
	}
	b.WriteString("\nGiá có thể thay đổi theo số lượng và thời điểm.")
	return b.String()
}
