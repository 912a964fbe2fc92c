package panel

type MenuItem struct {
	Path  string
	Label string
}

// Menu lists the panel's navigation entries in display order.
func Menu() []MenuItem {
	return []MenuItem{
		{Path: "/products", Label: "Produtos"},
		{Path: "/categories", Label: "Categorias"},
	}
}
