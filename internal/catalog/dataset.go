package catalog

// Dataset is the read-only collection loaded at startup.
type Dataset struct {
	categories []Category
	ids        []string
	index      map[string]Model
}

// NewDataset copies categories and stamps every category and model with its
// source position. The input is not modified.
func NewDataset(categories []Category) *Dataset {
	d := &Dataset{
		categories: make([]Category, len(categories)),
		index:      map[string]Model{},
	}
	for ci, category := range categories {
		models := make([]Model, len(category.Models))
		for mi, model := range category.Models {
			model.Category = ci
			model.Position = mi
			models[mi] = model
			id := model.CardID()
			d.ids = append(d.ids, id)
			d.index[id] = model
		}
		d.categories[ci] = Category{Name: category.Name, Models: models, Position: ci}
	}
	return d
}

// Categories returns the dataset in source order. Callers must not mutate it.
func (d *Dataset) Categories() []Category {
	if d == nil {
		return nil
	}
	return d.categories
}

// CardIDs returns the identity of every card in source order.
func (d *Dataset) CardIDs() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.ids...)
}

// Total is the number of models across all categories.
func (d *Dataset) Total() int {
	if d == nil {
		return 0
	}
	return len(d.ids)
}

// Lookup resolves a card identity to its model.
func (d *Dataset) Lookup(id string) (Model, bool) {
	if d == nil {
		return Model{}, false
	}
	m, ok := d.index[id]
	return m, ok
}
