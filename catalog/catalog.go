// Package catalog holds the static reference data shown when the farmer asks
// for ingredients, products or nearby stores outside a completed analysis.
// It is deliberately independent of whatever the advisor returns inside an
// analysis result: advisor output is kept verbatim, this is the fallback.
package catalog

import "agrichat/types"

var stores = []types.Store{
	{ID: "1", Name: "Cửa hàng VTNN Ba Minh", Distance: "1.2 km", Tags: []string{"Gần bạn", "Có thể có thuốc phù hợp"}, Phone: "0912345678", Address: "Ấp 3, Xã Tân Thạnh, Long An"},
	{ID: "2", Name: "Đại lý Hai Lúa", Distance: "3.5 km", Tags: []string{"Chuyên BVTV", "Uy tín"}, Phone: "0987654321", Address: "Thị trấn Bến Lức, Long An"},
}

var ingredients = []types.Ingredient{
	{ID: "i1", Name: "Tricyclazole", Mechanism: "Nội hấp, lưu dẫn mạnh, hiệu lực kéo dài.", Priority: "High"},
	{ID: "i2", Name: "Isoprothiolane", Mechanism: "Đặc trị đạo ôn, giúp cây phục hồi nhanh.", Priority: "Medium"},
}

var products = []types.Product{
	{ID: "p1", Name: "Beam 75WP", ActiveIngredient: "Tricyclazole", Formulation: "WP", Usage: "18g/bình 16L"},
	{ID: "p2", Name: "Fuji-One 40EC", ActiveIngredient: "Isoprothiolane", Formulation: "EC", Usage: "30ml/bình 16L"},
}

// Accessors return copies so callers cannot mutate the shared data.

func Stores() []types.Store {
	return append([]types.Store(nil), stores...)
}

func Ingredients() []types.Ingredient {
	return append([]types.Ingredient(nil), ingredients...)
}

func Products() []types.Product {
	return append([]types.Product(nil), products...)
}
