package domain

// Category groups products, e.g. "beans" or "equipment".
type Category struct {
	ID          int64
	Name        string
	Description string
}

// Size is a packaging size referenced by product variants.
type Size struct {
	ID   int64
	Name string
}

// AttributeTemplate names a dynamic product characteristic such as "origin".
type AttributeTemplate struct {
	ID   int64
	Name string
}

// AttributeValue is one permitted value of an attribute template.
type AttributeValue struct {
	ID         int64
	TemplateID int64
	Value      string
}

// User is a catalog back-office account. Credentials live with the auth collaborator.
type User struct {
	ID       int64
	Username string
	Email    string
	Role     string
}
