package chatbot

// StoreInfo is the shop's public contact sheet
type StoreInfo struct {
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone"`
	Hotline      string       `json:"hotline"`
	Email        string       `json:"email"`
	WorkingHours WorkingHours `json:"workingHours"`
	Bank         BankInfo     `json:"bankInfo"`
}

type WorkingHours struct {
	Weekday  string `json:"weekday"`
	Saturday string `json:"saturday"`
	Sunday   string `json:"sunday"`
}

type BankInfo struct {
	Bank    string `json:"bank"`
	Account string `json:"account"`
	Holder  string `json:"holder"`
}

// Policies are the customer-facing shipping, return, warranty and payment terms
type Policies struct {
	Shipping ShippingPolicy `json:"shipping"`
	Return   ReturnPolicy   `json:"return"`
	Warranty WarrantyPolicy `json:"warranty"`
	Payment  PaymentPolicy  `json:"payment"`
}

type ShippingPolicy struct {
	FreeShip    string `json:"freeShip"`
	Fee         string `json:"fee"`
	Time        string `json:"time"`
	ExpressTime string `json:"expressTime"`
}

type ReturnPolicy struct {
	Window    string `json:"window"`
	Condition string `json:"condition"`
	Refund    string `json:"refund"`
	Exception string `json:"exception"`
}

type WarrantyPolicy struct {
	Steel     string `json:"steel"`
	Equipment string `json:"equipment"`
	Cement    string `json:"cement"`
}

type PaymentPolicy struct {
	Methods      []string `json:"methods"`
	Deposit      string   `json:"deposit"`
	TransferNote string   `json:"transferNote"`
}

var storeInfo = StoreInfo{
	Name:    "Cửa hàng Vật liệu Xây dựng Thành Tài",
	Address: "B34,tổ 29,KP5, Phường Trấn Biên, tỉnh Đồng Nai",
	Phone:   "0903 096 731",
	Hotline: "1800 6868",
	Email:   "contact@thanhtai.vn",
	WorkingHours: WorkingHours{
		Weekday:  "7:00 - 18:00",
		Saturday: "7:30 - 17:00",
		Sunday:   "8:00 - 12:00",
	},
	Bank: BankInfo{
		Bank:    "TPBank",
		Account: "06729594301",
		Holder:  "NGUYEN THANH TAI",
	},
}

var policies = Policies{
	Shipping: ShippingPolicy{
		FreeShip:    "Đơn hàng > 5 triệu hoặc nội thành < 5km",
		Fee:         "30.000đ - 50.000đ nội thành, tính theo km ngoại thành",
		Time:        "Trong ngày (nội thành), 1-2 ngày (ngoại thành)",
		ExpressTime: "2-4 tiếng (nội thành, phụ thu 50.000đ)",
	},
	Return: ReturnPolicy{
		Window:    "3 ngày kể từ khi nhận hàng",
		Condition: "Hàng còn nguyên vẹn, chưa sử dụng, bao bì không rách",
		Refund:    "Hoàn tiền 100% hoặc đổi sản phẩm tương đương",
		Exception: "Hàng đặt riêng, hàng theo size không được đổi trả",
	},
	Warranty: WarrantyPolicy{
		Steel:     "Theo tiêu chuẩn nhà sản xuất (không rỉ sét do bảo quản sai)",
		Equipment: "6-12 tháng tùy loại thiết bị",
		Cement:    "Bảo hành chất lượng trong hạn sử dụng (thường 60 ngày)",
	},
	Payment: PaymentPolicy{
		Methods:      []string{"Chuyển khoản 100%", "Cọc 50%"},
		Deposit:      "Cọc 50% khi đặt hàng, thanh toán phần còn lại khi nhận hàng",
		TransferNote: "Nội dung CK: [Mã đơn hàng] - [SĐT]",
	},
}

// StoreInformation returns a copy of the store contact sheet
func StoreInformation() StoreInfo {
	return storeInfo
}

// StorePolicies returns a copy of the store policies
func StorePolicies() Policies {
	p := policies
	p.Payment.Methods = append([]string(nil), policies.Payment.Methods...)
	return p
}
