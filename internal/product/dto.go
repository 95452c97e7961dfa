package product

type MenuResponse struct {
	TraceID    string        `json:"traceId,omitempty"`
	Categories []CategoryDTO `json:"categories"`
	Products   []ProductDTO  `json:"products"`
}

type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	CategoryID *int64 `json:"categoryId"`
	Category   string `json:"category"`
}
