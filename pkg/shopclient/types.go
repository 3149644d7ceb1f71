package shopclient

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	IsEmailConfirmed bool   `json:"isEmailConfirmed"`
}

type Creator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	IsActive    bool      `json:"isActive"`
	CreatedBy   *Creator  `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

type ProductQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// CartProduct is nil on a line whose product was deleted.
type CartProduct struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	IsActive    bool    `json:"isActive"`
}

type CartItem struct {
	ProductID string       `json:"productId"`
	Product   *CartProduct `json:"product"`
	Quantity  int          `json:"quantity"`
	Price     float64      `json:"price"`
}

type Cart struct {
	ID     string     `json:"id"`
	UserID string     `json:"userId"`
	Items  []CartItem `json:"items"`
	Total  float64    `json:"total"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is any non-success response from the API.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}
