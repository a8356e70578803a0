package chatbot

import (
	"fmt"
	"math"
	"strings"

	"vlxd/internal/model"
	"vlxd/internal/utils"
)

// MsgNotEnoughProducts is returned when fewer than two products are given
const MsgNotEnoughProducts = "❌ Không tìm thấy đủ sản phẩm để so sánh."

// GenerateComparisonResponse renders a Markdown comparison of the first two products
func GenerateComparisonResponse(products []model.ComparisonProduct) string {
	if len(products) < 2 {
		return MsgNotEnoughProducts
	}
	p1, p2 := products[0], products[1]

	var b strings.Builder
	fmt.Fprintf(&b, "⚖️ **So sánh %s vs %s**\n\n", p1.Name, p2.Name)

	b.WriteString("💰 **Giá:**\n")
	fmt.Fprintf(&b, "- %s: **%sđ**/%s\n", p1.Name, utils.FormatVND(p1.Price), p1.Unit)
	fmt.Fprintf(&b, "- %s: **%sđ**/%s\n", p2.Name, utils.FormatVND(p2.Price), p2.Unit)

	diff := p1.Price - p2.Price
	switch {
	case diff > 0:
		fmt.Fprintf(&b, "→ %s rẻ hơn %sđ\n", p2.Name, utils.FormatVND(diff))
	case diff < 0:
		fmt.Fprintf(&b, "→ %s rẻ hơn %sđ\n", p1.Name, utils.FormatVND(math.Abs(diff)))
	default:
		b.WriteString("→ Giá tương đương\n")
	}
	b.WriteString("\n")

	if p1.Brand != "" || p2.Brand != "" {
		b.WriteString("🏷️ **Thương hiệu:**\n")
		fmt.Fprintf(&b, "- %s: %s\n", p1.Name, orDefault(p1.Brand, "N/A"))
		fmt.Fprintf(&b, "- %s: %s\n\n", p2.Name, orDefault(p2.Brand, "N/A"))
	}

	if p1.Quality != "" || p2.Quality != "" {
		b.WriteString("⭐ **Chất lượng:**\n")
		fmt.Fprintf(&b, "- %s: %s\n", p1.Name, orDefault(p1.Quality, "Tiêu chuẩn"))
		fmt.Fprintf(&b, "- %s: %s\n\n", p2.Name, orDefault(p2.Quality, "Tiêu chuẩn"))
	}

	if len(p1.Usage) > 0 || len(p2.Usage) > 0 {
		b.WriteString("🔧 **Công dụng:**\n")
		fmt.Fprintf(&b, "- %s: %s\n", p1.Name, usageSummary(p1.Usage))
		fmt.Fprintf(&b, "- %s: %s\n\n", p2.Name, usageSummary(p2.Usage))
	}

	b.WriteString("💡 **Khuyến nghị:**\n")
	pricier, cheaper := p1, p2
	if diff < 0 {
		pricier, cheaper = p2, p1
	}
	switch {
	case diff != 0 && isHighQuality(pricier.Quality):
		fmt.Fprintf(&b, "→ Chọn **%s** nếu ưu tiên chất lượng\n", pricier.Name)
		fmt.Fprintf(&b, "→ Chọn **%s** nếu muốn tiết kiệm chi phí", cheaper.Name)
	case diff != 0:
		fmt.Fprintf(&b, "→ Chọn **%s** để tiết kiệm %sđ/%s", cheaper.Name, utils.FormatVND(math.Abs(diff)), cheaper.Unit)
	default:
		b.WriteString("→ Cả hai đều phù hợp, tùy thuộc vào mục đích sử dụng")
	}

	return b.String()
}

func isHighQuality(quality string) bool {
	return strings.Contains(utils.NormalizeVietnamese(quality), "cao")
}

func usageSummary(usage []string) string {
	if len(usage) == 0 {
		return "Đa dụng"
	}
	if len(usage) > 2 {
		usage = usage[:2]
	}
	return strings.Join(usage, ", ")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
