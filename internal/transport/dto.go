package transport

// Request bodies. The msg tag is the client-facing text for any failed rule;
// msg_<rule> overrides it for that one rule.

type SignupRequest struct {
	Name     string `json:"name"     validate:"required,min=2" msg:"Name must be at least 2 characters long"`
	Email    string `json:"email"    validate:"required,email" msg:"Please provide a valid email"`
	Password string `json:"password" validate:"required,min=6,max=72" msg:"Password must be at least 6 characters long" msg_max:"Password must be at most 72 bytes long"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email" msg:"Please provide a valid email"`
	Password string `json:"password" validate:"required"       msg:"Password is required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email" msg:"Please provide a valid email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72" msg:"Password must be at least 6 characters long" msg_max:"Password must be at most 72 bytes long"`
}

type ProductRequest struct {
	Name        string   `json:"name"        validate:"required,min=2,max=100"  msg:"Product name must be between 2 and 100 characters"`
	Description string   `json:"description" validate:"required,min=10,max=500" msg:"Description must be between 10 and 500 characters"`
	Price       *float64 `json:"price"       validate:"required,gte=0"          msg:"Price must be a positive number"`
	Quantity    *int     `json:"quantity"    validate:"required,gte=0"          msg:"Quantity must be a non-negative integer"`
	Category    string   `json:"category"    validate:"required,oneof=Electronics Clothing Books Home Sports Other" msg:"Invalid category"`
	Image       string   `json:"image"       validate:"required"                msg:"Product image is required"`
}

// ProductUpdateRequest applies only the fields that are present.
type ProductUpdateRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=2,max=100"  msg:"Product name must be between 2 and 100 characters"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=500" msg:"Description must be between 10 and 500 characters"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"          msg:"Price must be a positive number"`
	Quantity    *int     `json:"quantity"    validate:"omitempty,gte=0"          msg:"Quantity must be a non-negative integer"`
	Category    *string  `json:"category"    validate:"omitempty,oneof=Electronics Clothing Books Home Sports Other" msg:"Invalid category"`
	Image       *string  `json:"image"       validate:"omitempty,min=1"          msg:"Product image is required"`
	IsActive    *bool    `json:"isActive"`
}

type QuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0" msg:"Quantity must be a non-negative integer"`
}

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required,uuid" msg:"Invalid product ID"`
	Quantity  int    `json:"quantity"  validate:"gte=1"         msg:"Quantity must be at least 1"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" validate:"gte=1" msg:"Quantity must be at least 1"`
}

type CreateAdminRequest struct {
	Name     string `json:"name"     validate:"required,min=2" msg:"Name must be at least 2 characters long"`
	Email    string `json:"email"    validate:"required,email" msg:"Please provide a valid email"`
	Password string `json:"password" validate:"required,min=6,max=72" msg:"Password must be at least 6 characters long" msg_max:"Password must be at most 72 bytes long"`
}

type BulkDeleteRequest struct {
	ProductIDs []string `json:"productIds" validate:"required" msg:"Product IDs must be an array"`
}
