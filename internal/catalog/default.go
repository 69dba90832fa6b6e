package catalog

// Default returns a fresh copy of the compiled-in catalog used to seed an
// empty store and to stand in for an unreadable one.
func Default() *Document {
	return &Document{
		AreaLimits:      AreaLimits{Min: 20, Max: 1000},
		RoofCoefficient: 1.2,
		Foundation: []Item{
			{ID: "pile", Title: "Свайный", PricePerSquareMeter: 1000, Enabled: true, Order: 10},
			{ID: "strip", Title: "Ленточный", PricePerSquareMeter: 1800, Enabled: true, Order: 20},
			{ID: "slab", Title: "Плита", PricePerSquareMeter: 2500, Enabled: true, Order: 30},
		},
		Walls: []Item{
			{ID: "aerated", Title: "Газобетон", PricePerSquareMeter: 3500, Enabled: true, Order: 10},
			{ID: "brick", Title: "Кирпич", PricePerSquareMeter: 5200, Enabled: true, Order: 20},
			{ID: "frame", Title: "Каркас", PricePerSquareMeter: 3000, Enabled: true, Order: 30},
		},
		Floors: []Item{
			{ID: "wood", Title: "Деревянные", PricePerSquareMeter: 1500, Enabled: true, Order: 10},
			{ID: "rc", Title: "Ж/б плиты", PricePerSquareMeter: 2400, Enabled: true, Order: 20},
		},
		Roof: []Item{
			{ID: "metal", Title: "Металлочерепица", PricePerSquareMeter: 1600, Enabled: true, Order: 10},
			{ID: "soft", Title: "Мягкая кровля", PricePerSquareMeter: 2100, Enabled: true, Order: 20},
		},
		Extras: []Item{
			{ID: "electric", Title: "Электрика", PricePerSquareMeter: 900, Enabled: true, Order: 10},
			{ID: "water", Title: "Водоснабжение", PricePerSquareMeter: 700, Enabled: true, Order: 20},
			{ID: "sewer", Title: "Канализация", PricePerSquareMeter: 650, Enabled: true, Order: 30},
			{ID: "heating", Title: "Отопление", PricePerSquareMeter: 1100, Enabled: true, Order: 40},
			{ID: "windows", Title: "Окна и двери", PricePerSquareMeter: 1300, Enabled: true, Order: 50},
			{ID: "rough", Title: "Черновая отделка", PricePerSquareMeter: 2000, Enabled: true, Order: 60},
		},
	}
}
