package repo

type ProductFilter struct {
	Name       string
	CategoryID *int64
	// Available keeps only products with inventory quantity above zero.
	Available bool
	Offset    *int
	Limit     *int
}
