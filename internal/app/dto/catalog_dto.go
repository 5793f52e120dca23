package dto

import "github.com/peterbokern/makibeans/internal/domain"

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type SizeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AttributeTemplateResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AttributeValueResponse struct {
	ID         int64  `json:"id"`
	TemplateID int64  `json:"templateId"`
	Value      string `json:"value"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func ToCategoryResponse(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

func ToSizeResponse(s *domain.Size) *SizeResponse {
	return &SizeResponse{ID: s.ID, Name: s.Name}
}

func ToAttributeTemplateResponse(t *domain.AttributeTemplate) *AttributeTemplateResponse {
	return &AttributeTemplateResponse{ID: t.ID, Name: t.Name}
}

func ToAttributeValueResponse(v *domain.AttributeValue) *AttributeValueResponse {
	return &AttributeValueResponse{ID: v.ID, TemplateID: v.TemplateID, Value: v.Value}
}

func ToUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// ToResponseList converts every item with fn
func ToResponseList[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}
