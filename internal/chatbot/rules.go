package chatbot

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is one canned answer. Patterns are tested against normalized text
// (no diacritics, lowercase); the highest Priority rule with any match wins.
type Rule struct {
	Name        string
	Patterns    []*regexp.Regexp
	Response    string
	Suggestions []string
	Priority    int
}

// QuickPriceRule sends a price question to the catalog instead of answering it
type QuickPriceRule struct {
	Pattern        *regexp.Regexp
	ProductKeyword string
	Suggestions    []string
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// DefaultRules is the store FAQ table
func DefaultRules() []Rule {
	s, p := storeInfo, policies

	return []Rule{
		{
			Name: "store_address",
			Patterns: patterns(
				`^(dia chi|o dau|cua hang o dau|shop o dau|diem ban|noi ban)`,
				`^(cua hang|shop).*(o dau|dia chi)`,
				`tim (cua hang|shop|dia chi)`,
			),
			Response: fmt.Sprintf(`📍 **Địa chỉ cửa hàng**

🏪 **%s**
📍 %s

🗺️ Tìm đường: [Google Maps](https://maps.google.com)

💡 Bạn có thể ghé trực tiếp để xem hàng hoặc đặt hàng online để được giao tận nơi!`, s.Name, s.Address),
			Suggestions: []string{"Giờ mở cửa", "Phí giao hàng", "Hotline"},
			Priority:    10,
		},
		{
			Name: "opening_hours",
			Patterns: patterns(
				`^(gio mo cua|mo cua luc may|may gio mo|gio lam viec|working hours)`,
				`^(lam viec|mo cua).*(gio nao|may gio)`,
				`(cua hang|shop).*(mo cua|dong cua|lam viec)`,
			),
			Response: fmt.Sprintf(`⏰ **Giờ làm việc**

📅 **Thứ 2 - Thứ 6:** %s
📅 **Thứ 7:** %s
📅 **Chủ nhật:** %s

📞 Hotline: **%s** (hỗ trợ 24/7)

💡 Đặt hàng trước 10h sáng để được giao trong ngày!`, s.WorkingHours.Weekday, s.WorkingHours.Saturday, s.WorkingHours.Sunday, s.Hotline),
			Suggestions: []string{"Địa chỉ cửa hàng", "Phí giao hàng", "Đặt hàng"},
			Priority:    10,
		},
		{
			Name: "contact",
			Patterns: patterns(
				`^(hotline|so dien thoai|sdt|lien he|contact|goi dien)`,
				`(so dien thoai|hotline|sdt).*(shop|cua hang)`,
				`(shop|cua hang).*(so dien thoai|hotline)`,
			),
			Response: fmt.Sprintf(`📞 **Thông tin liên hệ**

📱 **Hotline:** %s (miễn phí, 24/7)
📱 **Điện thoại:** %s
📧 **Email:** %s

💬 Hoặc chat ngay với tôi để được hỗ trợ!`, s.Hotline, s.Phone, s.Email),
			Suggestions: []string{"Địa chỉ cửa hàng", "Giờ mở cửa", "Đặt hàng"},
			Priority:    10,
		},
		{
			Name: "shipping",
			Patterns: patterns(
				`^(phi ship|phi giao hang|phi van chuyen|cuoc ship|cuoc giao)`,
				`^(giao hang|ship).*(phi|gia|bao nhieu)`,
				`(phi|gia).*(giao hang|ship|van chuyen)`,
				`^(freeship|free ship|mien phi giao|mien phi ship)`,
				`(co|duoc).*(freeship|free ship|mien phi giao)`,
			),
			Response: fmt.Sprintf(`🚚 **Chính sách giao hàng**

✅ **Miễn phí giao hàng:**
- Đơn hàng > 5.000.000đ
- Khoảng cách < 5km

💰 **Phí giao hàng:**
- Nội thành: %s
- Ngoại thành: Tính theo km

⏱️ **Thời gian giao:**
- Nội thành: %s
- Giao hỏa tốc: %s

💡 Đặt hàng trước 10h sáng để được giao trong ngày!`, p.Shipping.Fee, p.Shipping.Time, p.Shipping.ExpressTime),
			Suggestions: []string{"Đặt hàng", "Kiểm tra đơn hàng", "Địa chỉ cửa hàng"},
			Priority:    9,
		},
		{
			Name: "returns",
			Patterns: patterns(
				`^(doi tra|tra hang|hoan tien|return|refund)`,
				`(co duoc|muon).*(doi|tra|hoan)`,
				`(chinh sach|quy dinh).*(doi tra|tra hang)`,
				`^(doi|tra).*(hang|san pham)`,
			),
			Response: fmt.Sprintf(`🔄 **Chính sách đổi trả**

⏳ **Thời gian:** %s

✅ **Điều kiện:**
- %s
- Có hóa đơn mua hàng

💰 **Hoàn tiền:** %s

⚠️ **Lưu ý:** %s

📞 Liên hệ hotline %s để được hỗ trợ!`, p.Return.Window, p.Return.Condition, p.Return.Refund, p.Return.Exception, s.Hotline),
			Suggestions: []string{"Hotline", "Kiểm tra đơn hàng", "Bảo hành"},
			Priority:    9,
		},
		{
			Name: "warranty",
			Patterns: patterns(
				`^(bao hanh|warranty)`,
				`(chinh sach|quy dinh).*(bao hanh)`,
				`(bao hanh).*(the nao|bao lau|nhu nao)`,
			),
			Response: fmt.Sprintf(`🛡️ **Chính sách bảo hành**

🔩 **Thép, sắt:** %s
🔧 **Thiết bị, máy móc:** %s
🧱 **Xi măng:** %s

📝 **Để được bảo hành:**
- Giữ lại hóa đơn mua hàng
- Liên hệ trong thời hạn bảo hành
- Hàng không bị hư hỏng do sử dụng sai cách

📞 Hotline hỗ trợ: %s`, p.Warranty.Steel, p.Warranty.Equipment, p.Warranty.Cement, s.Hotline),
			Suggestions: []string{"Đổi trả", "Hotline", "Tìm sản phẩm"},
			Priority:    9,
		},
		{
			Name: "payment",
			Patterns: patterns(
				`^(thanh toan|payment|chuyen khoan|tien mat|tra tien)`,
				`(phuong thuc|cach).*(thanh toan|tra tien)`,
				`(thanh toan).*(the nao|nhu nao|cach nao)`,
				`^(stk|so tai khoan|account|bank)`,
			),
			Response: fmt.Sprintf(`💳 **Phương thức thanh toán**

✅ **Chấp nhận:**
%s

🏦 **Thông tin chuyển khoản:**
- Ngân hàng: %s
- Số TK: **%s**
- Chủ TK: %s

📝 **Nội dung CK:** %s

💡 %s`, bulletList(p.Payment.Methods), s.Bank.Bank, s.Bank.Account, s.Bank.Holder, p.Payment.TransferNote, p.Payment.Deposit),
			Suggestions: []string{"Đặt hàng", "Phí giao hàng", "Hotline"},
			Priority:    9,
		},
		{
			Name: "promotions",
			Patterns: patterns(
				`^(khuyen mai|giam gia|sale|uu dai|promotion)`,
				`(co|dang).*(khuyen mai|giam gia|sale)`,
				`(khuyen mai|giam gia|sale).*(gi|nao|the nao)`,
			),
			Response: `🎉 **Chương trình khuyến mãi**

🔥 **Ưu đãi hiện tại:**
- Giảm 3-8% khi mua số lượng lớn
- Freeship đơn > 5 triệu
- Xi măng INSEE PC40: Mua >100 bao giảm 5%
- Xi măng Hà Tiên: Mua >100 bao giảm 5%

💡 Chat để được tư vấn chi tiết về sản phẩm bạn quan tâm!`,
			Suggestions: []string{"Xem xi măng", "Xem gạch", "Đặt hàng"},
			Priority:    8,
		},
		{
			Name: "help",
			Patterns: patterns(
				`^(help|tro giup|ban lam duoc gi|ban co the gi)`,
				`^(huong dan|chi dan|cach su dung)`,
				`(ban|chatbot|ai).*(la gi|lam gi|giup gi)`,
			),
			Response: `🤖 **Tôi có thể giúp bạn:**

🔍 **Tìm kiếm sản phẩm**
- "Tìm xi măng INSEE"
- "Giá gạch ống"

📐 **Tính toán vật liệu**
- "Tính vật liệu xây nhà 100m²"
- "Cần bao nhiêu xi măng để đổ 10m² bê tông"

🛒 **Đặt hàng**
- "Đặt 50 bao xi măng INSEE"
- "Mua 1000 viên gạch đinh"

📦 **Tra cứu đơn hàng**
- "Kiểm tra đơn hàng"
- "Đơn hàng của tôi"

💬 **Tư vấn**
- "So sánh xi măng INSEE và Hà Tiên"
- "Xi măng nào tốt để đổ móng"`,
			Suggestions: []string{"Tìm xi măng", "Tính vật liệu", "Đặt hàng", "Khuyến mãi"},
			Priority:    7,
		},
		{
			Name: "greeting",
			Patterns: patterns(
				`^(xin chao|chao ban|chao shop|chao|hello|hi|hey)$`,
				`^(chao buoi sang|chao buoi chieu|chao buoi toi)$`,
			),
			Response: fmt.Sprintf(`👋 **Xin chào!**

Tôi là trợ lý AI của **%s**.

Tôi có thể giúp bạn:
🛒 Tìm kiếm và đặt hàng vật liệu xây dựng
📐 Tính toán khối lượng vật liệu cần thiết
💬 Tư vấn lựa chọn sản phẩm phù hợp
📦 Theo dõi đơn hàng

Hãy cho tôi biết bạn cần hỗ trợ gì nhé!`, s.Name),
			Suggestions: []string{"Tìm xi măng", "Tính vật liệu xây nhà", "Khuyến mãi", "Giá cả"},
			Priority:    5,
		},
		{
			Name: "thanks",
			Patterns: patterns(
				`^(cam on|thank you|thanks|cam on ban|cam on shop)$`,
				`^(ok cam on|ok thanks|da cam on)$`,
			),
			Response: fmt.Sprintf(`🙏 **Không có chi!**

Rất vui được hỗ trợ bạn! Nếu cần thêm gì, cứ hỏi tôi nhé.

📞 Hotline: %s (hỗ trợ 24/7)`, s.Hotline),
			Suggestions: []string{"Tìm sản phẩm", "Đặt hàng", "Khuyến mãi"},
			Priority:    5,
		},
		{
			Name: "goodbye",
			Patterns: patterns(
				`^(tam biet|bye|goodbye|hen gap lai)$`,
				`^(ok bye|ok tam biet)$`,
			),
			Response: `👋 **Tạm biệt!**

Cảm ơn bạn đã ghé thăm! Hẹn gặp lại bạn!

💡 Bạn có thể quay lại bất cứ lúc nào để được hỗ trợ.`,
			Suggestions: []string{"Quay lại", "Trang chủ"},
			Priority:    5,
		},
		{
			Name: "off_topic",
			Patterns: patterns(
				`^(thoi tiet|weather|nhiet do)`,
				`^(ke chuyen|ke chuyen cuoi|troll|hai)`,
				`^(ban co nguoi yeu chua|ban bao nhieu tuoi|ban la ai|ai tao ra ban)`,
				`^(an gi|choi dau|di dau)`,
				`^(hat di|hat cho nghe|ke chuyen ma)`,
				`^(tin tuc|chinh tri|showbiz|bong da)`,
			),
			Response: `🤖 **Chào bạn! Rất vui được trò chuyện.**

Tuy nhiên, tôi là **Trợ lý Chuyên gia Vật liệu Xây dựng**. Tôi được thiết kế để hỗ trợ bạn tốt nhất trong các lĩnh vực:
✅ Tra cứu giá và đặc tính vật liệu (Xi măng, Cát, Đá, Gạch, Thép...)
✅ Tính toán khối lượng vật liệu cho công trình (Nhà, Tường, Sàn...)
✅ Hỗ trợ đặt hàng và theo dõi đơn hàng

Những câu hỏi ngoài chuyên môn xây dựng có lẽ tôi chưa rành lắm. Bạn có cần tôi giúp gì về **vật liệu xây dựng** không ạ?`,
			Suggestions: []string{"Bảng giá hôm nay", "Tính vật liệu xây nhà", "Tư vấn loại gạch"},
			Priority:    4,
		},
	}
}

// DefaultQuickPriceRules maps "giá ..." questions to a catalog keyword
func DefaultQuickPriceRules() []QuickPriceRule {
	return []QuickPriceRule{
		{
			Pattern:        regexp.MustCompile(`^(gia|bao nhieu).*(xi mang|ximang)`),
			ProductKeyword: "xi măng",
			Suggestions:    []string{"Xi măng INSEE", "Xi măng Hà Tiên", "So sánh xi măng"},
		},
		{
			Pattern:        regexp.MustCompile(`^(gia|bao nhieu).*(gach)`),
			ProductKeyword: "gạch",
			Suggestions:    []string{"Gạch đinh", "Gạch ống", "Tính gạch xây tường"},
		},
		{
			Pattern:        regexp.MustCompile(`^(gia|bao nhieu).*(cat)`),
			ProductKeyword: "cát",
			Suggestions:    []string{"Cát xây dựng", "Cát vàng", "Tính vật liệu"},
		},
		{
			Pattern:        regexp.MustCompile(`^(gia|bao nhieu).*(da)`),
			ProductKeyword: "đá",
			Suggestions:    []string{"Đá 1x2", "Đá mi", "Tính vật liệu"},
		},
		{
			Pattern:        regexp.MustCompile(`^(gia|bao nhieu).*(thep|sat)`),
			ProductKeyword: "thép",
			Suggestions:    []string{"Thép D10", "Thép D12", "Thép D16"},
		},
	}
}

// comparisonPatterns capture the product names on either side of a connector
var comparisonPatterns = patterns(
	`so sanh\s+(.+?)\s+(voi|va|vs)\s+(.+)`,
	`(.+?)\s+(voi|hay|vs)\s+(.+?)\s+(nao tot|nao hon|khac nhau|gi khac)`,
	`nen (chon|mua|dung)\s+(.+?)\s+(hay|voi)\s+(.+)`,
	`(.+?)\s+khac\s+(.+?)\s+(nhu the nao|the nao|gi)`,
)

// connectorGroups are capture groups that are never product names
var connectorGroups = map[string]bool{
	"voi": true, "va": true, "vs": true, "hay": true,
	"nao tot": true, "nao hon": true, "khac nhau": true, "gi khac": true,
	"nen": true, "chon": true, "mua": true, "dung": true,
	"nhu the nao": true, "the nao": true, "gi": true, "khac": true,
}

var comparisonSuggestions = []string{"Xem chi tiết", "Đặt hàng", "Tư vấn thêm"}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}
