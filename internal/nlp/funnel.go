package nlp

// The category funnel is a literal 3-level taxonomy used for expense-like
// queries: main category → subcategory → specific item. Storage keeps only
// the flat main-category field, so subcategory/item matches degrade to a
// description text search downstream. Matching never skips a level: an
// item is only tried after its subcategory matched.

// FunnelItem is a level-3 specific item.
type FunnelItem struct {
	Name     string
	Triggers []string
}

// FunnelSub is a level-2 subcategory.
type FunnelSub struct {
	Name     string
	Triggers []string
	Items    []FunnelItem
}

// FunnelCategory is a level-1 main category. Category is the literal value
// stored on ledger entries.
type FunnelCategory struct {
	Category string
	Triggers []string
	Subs     []FunnelSub
}

// CategoryFunnel is the canonical funnel table.
var CategoryFunnel = []FunnelCategory{
	{
		Category: "Ăn uống",
		Triggers: []string{"ăn uống", "đồ ăn", "thức ăn", "ăn", "uống", "food"},
		Subs: []FunnelSub{
			{
				Name:     "Ăn sáng",
				Triggers: []string{"ăn sáng", "bữa sáng", "breakfast"},
				Items: []FunnelItem{
					{Name: "Phở", Triggers: []string{"phở", "pho"}},
					{Name: "Bánh mì", Triggers: []string{"bánh mì", "banh mi"}},
					{Name: "Xôi", Triggers: []string{"xôi"}},
				},
			},
			{
				Name:     "Ăn trưa",
				Triggers: []string{"ăn trưa", "bữa trưa", "cơm trưa", "lunch"},
				Items: []FunnelItem{
					{Name: "Cơm văn phòng", Triggers: []string{"cơm văn phòng", "cơm vp"}},
					{Name: "Bún", Triggers: []string{"bún"}},
				},
			},
			{
				Name:     "Ăn tối",
				Triggers: []string{"ăn tối", "bữa tối", "cơm tối", "dinner"},
				Items: []FunnelItem{
					{Name: "Lẩu", Triggers: []string{"lẩu"}},
					{Name: "Nướng", Triggers: []string{"đồ nướng", "nướng"}},
				},
			},
			{
				Name:     "Cà phê",
				Triggers: []string{"cà phê", "cafe", "coffee", "trà sữa"},
				Items: []FunnelItem{
					{Name: "Trà sữa", Triggers: []string{"trà sữa", "tra sua"}},
					{Name: "Cà phê sữa", Triggers: []string{"cà phê sữa", "bạc xỉu"}},
				},
			},
		},
	},
	{
		Category: "Di chuyển",
		Triggers: []string{"di chuyển", "đi lại", "xe", "xăng", "transport"},
		Subs: []FunnelSub{
			{
				Name:     "Xăng xe",
				Triggers: []string{"xăng", "đổ xăng", "xăng xe"},
			},
			{
				Name:     "Xe công nghệ",
				Triggers: []string{"grab", "be", "xanh sm", "taxi", "xe ôm"},
				Items: []FunnelItem{
					{Name: "Grab", Triggers: []string{"grab"}},
					{Name: "Taxi", Triggers: []string{"taxi"}},
				},
			},
			{
				Name:     "Gửi xe",
				Triggers: []string{"gửi xe", "đỗ xe", "bãi xe", "parking"},
			},
		},
	},
	{
		Category: "Mua sắm",
		Triggers: []string{"mua sắm", "shopping", "mua đồ", "quần áo", "giày dép"},
		Subs: []FunnelSub{
			{
				Name:     "Quần áo",
				Triggers: []string{"quần áo", "áo", "quần", "váy", "clothes"},
			},
			{
				Name:     "Giày dép",
				Triggers: []string{"giày", "dép", "giày dép", "shoes"},
			},
			{
				Name:     "Mua online",
				Triggers: []string{"shopee", "lazada", "tiki", "online"},
				Items: []FunnelItem{
					{Name: "Shopee", Triggers: []string{"shopee"}},
					{Name: "Lazada", Triggers: []string{"lazada"}},
				},
			},
		},
	},
	{
		Category: "Hóa đơn",
		Triggers: []string{"hóa đơn", "hoá đơn", "tiền điện", "tiền nước", "bill"},
		Subs: []FunnelSub{
			{
				Name:     "Tiền điện",
				Triggers: []string{"tiền điện", "điện", "electricity"},
			},
			{
				Name:     "Tiền nước",
				Triggers: []string{"tiền nước", "nước sinh hoạt", "water"},
			},
			{
				Name:     "Internet",
				Triggers: []string{"internet", "wifi", "mạng"},
			},
			{
				Name:     "Tiền nhà",
				Triggers: []string{"tiền nhà", "tiền trọ", "thuê nhà", "rent"},
			},
		},
	},
	{
		Category: "Giải trí",
		Triggers: []string{"giải trí", "xem phim", "chơi game", "du lịch", "entertainment"},
		Subs: []FunnelSub{
			{
				Name:     "Xem phim",
				Triggers: []string{"xem phim", "rạp phim", "vé phim", "movie"},
			},
			{
				Name:     "Du lịch",
				Triggers: []string{"du lịch", "đi chơi xa", "travel"},
			},
			{
				Name:     "Game",
				Triggers: []string{"game", "nạp game", "chơi game"},
			},
		},
	},
	{
		Category: "Sức khỏe",
		Triggers: []string{"sức khỏe", "khám bệnh", "thuốc", "bệnh viện", "health"},
		Subs: []FunnelSub{
			{
				Name:     "Khám bệnh",
				Triggers: []string{"khám bệnh", "khám", "bệnh viện", "phòng khám"},
			},
			{
				Name:     "Thuốc",
				Triggers: []string{"thuốc", "mua thuốc", "nhà thuốc", "medicine"},
			},
		},
	},
	{
		Category: "Giáo dục",
		Triggers: []string{"giáo dục", "học phí", "khóa học", "sách", "education"},
		Subs: []FunnelSub{
			{
				Name:     "Học phí",
				Triggers: []string{"học phí", "tiền học", "tuition"},
			},
			{
				Name:     "Sách vở",
				Triggers: []string{"sách", "vở", "sách vở", "book"},
			},
		},
	},
}
