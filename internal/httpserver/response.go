package httpserver

import (
	"encoding/json"

	"favorites-catalog/internal/domain"
)

type customerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type productResponse struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Price       json.Number  `json:"price"`
	Rating      *json.Number `json:"rating"`
}

type favoriteResponse struct {
	FavoriteID int64 `json:"favoriteId"`
	productResponse
}

type pageResponse[T any] struct {
	Content       []T `json:"content"`
	PageNumber    int `json:"pageNumber"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

func toCustomer(c domain.Customer) customerResponse {
	return customerResponse{ID: c.ID, Name: c.Name, Email: c.Email}
}

// toProduct exposes the external id as "id"; the internal id stays private.
func toProduct(p domain.Product) productResponse {
	res := productResponse{
		ID:          p.ExternalProductID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Price:       json.Number(p.Price.String()),
	}
	if p.Rating.Valid {
		r := json.Number(p.Rating.Decimal.String())
		res.Rating = &r
	}
	return res
}

func toFavorite(f domain.FavoriteProduct) favoriteResponse {
	return favoriteResponse{FavoriteID: f.ID, productResponse: toProduct(f.Product)}
}

func toPage[In, Out any](p domain.Page[In], convert func(In) Out) pageResponse[Out] {
	content := make([]Out, 0, len(p.Content))
	for _, item := range p.Content {
		content = append(content, convert(item))
	}
	return pageResponse[Out]{
		Content:       content,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
