package locale

// productContent is keyed by the ids of the seeded catalog.
var productContent = map[Locale]map[int64]Text{
	English: {
		1: {Name: "Wireless Headphones", Description: "High-quality wireless headphones with noise cancellation"},
		2: {Name: "Smartphone", Description: "Latest model smartphone with advanced features"},
		3: {Name: "Coffee Maker", Description: "Premium coffee maker for the perfect brew"},
		4: {Name: "Laptop Backpack", Description: "Durable laptop backpack with multiple compartments"},
		5: {Name: "Fitness Tracker", Description: "Advanced fitness tracker with heart rate monitor"},
		6: {Name: "Desk Lamp", Description: "Modern LED desk lamp with adjustable brightness"},
	},
	Spanish: {
		1: {Name: "Auriculares Inalámbricos", Description: "Auriculares inalámbricos de alta calidad con cancelación de ruido"},
		2: {Name: "Teléfono Inteligente", Description: "Último modelo de smartphone con funciones avanzadas"},
		3: {Name: "Cafetera", Description: "Cafetera premium para el café perfecto"},
		4: {Name: "Mochila para Portátil", Description: "Mochila duradera con múltiples compartimentos"},
		5: {Name: "Rastreador de Actividad", Description: "Pulsera avanzada con monitor de ritmo cardíaco"},
		6: {Name: "Lámpara de Escritorio", Description: "Lámpara LED moderna con brillo ajustable"},
	},
	Chinese: {
		1: {Name: "无线耳机", Description: "高品质无线耳机，支持降噪功能"},
		2: {Name: "智能手机", Description: "最新款智能手机，功能强大"},
		3: {Name: "咖啡机", Description: "高端咖啡机，打造完美咖啡"},
		4: {Name: "笔记本电脑背包", Description: "耐用多隔层笔记本电脑背包"},
		5: {Name: "健身手环", Description: "高级健身手环，支持心率监测"},
		6: {Name: "台灯", Description: "现代LED台灯，亮度可调"},
	},
	Japanese: {
		1: {Name: "ワイヤレスヘッドホン", Description: "高品質のノイズキャンセリング搭載ワイヤレスヘッドホン"},
		2: {Name: "スマートフォン", Description: "最新モデルの高機能スマートフォン"},
		3: {Name: "コーヒーメーカー", Description: "理想の一杯を淹れるプレミアムコーヒーメーカー"},
		4: {Name: "ノートPC用バックパック", Description: "丈夫で収納力の高いバックパック"},
		5: {Name: "フィットネストラッカー", Description: "心拍数測定対応の高機能トラッカー"},
		6: {Name: "デスクランプ", Description: "明るさ調整が可能なモダンLEDデスクランプ"},
	},
}
