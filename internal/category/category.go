package category

// Category is a registration category together with how many active
// verified organizations currently sit in it.
type Category struct {
	Name              string `json:"name"`
	OrganizationCount int    `json:"organization_count"`
}

type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}
