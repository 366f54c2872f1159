package catalog

import "fmt"

type (
	ProductNotFound struct {
		ID int64
	}

	DuplicateProductName struct {
		Name string
	}

	ReadOnly struct {
		Op string
	}
)

func (p ProductNotFound) Error() string {
	return fmt.Sprintf("product %v not found", p.ID)
}

func (d DuplicateProductName) Error() string {
	return fmt.Sprintf("a product named %v already exists", d.Name)
}

func (r ReadOnly) Error() string {
	return fmt.Sprintf("catalog is read-only, cannot %v", r.Op)
}
