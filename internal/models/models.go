package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	CategoryElectronics = "Electronics"
	CategoryClothing    = "Clothing"
	CategoryBooks       = "Books"
	CategoryHome        = "Home"
	CategorySports      = "Sports"
	CategoryOther       = "Other"
)

var Categories = []string{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHome,
	CategorySports,
	CategoryOther,
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name             string    `gorm:"not null"              json:"name"`
	Email            string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash     string    `gorm:"not null"              json:"-"`
	Role             string    `gorm:"index;not null"        json:"role"`
	IsEmailConfirmed bool      `gorm:"not null"              json:"isEmailConfirmed"`

	EmailConfirmationTokenHash *string    `gorm:"index" json:"-"`
	EmailConfirmationExpires   *time.Time `json:"-"`
	PasswordResetTokenHash     *string    `gorm:"index" json:"-"`
	PasswordResetExpires       *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserRef is the populated form of a user inside products and carts.
type UserRef struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

func (UserRef) TableName() string { return "users" }

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null"             json:"name"`
	Description string    `gorm:"not null"             json:"description"`
	Price       float64   `gorm:"not null"             json:"price"`
	Quantity    int       `gorm:"not null"             json:"quantity"`
	Image       string    `gorm:"not null"             json:"image"`
	Category    string    `gorm:"index;not null"       json:"category"`
	IsActive    bool      `gorm:"index;not null"       json:"isActive"`

	CreatedByID uuid.UUID `gorm:"type:uuid;index"        json:"-"`
	CreatedBy   *UserRef  `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductRef is the populated product of a cart line.
type ProductRef struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	IsActive    bool      `json:"isActive"`
}

func (ProductRef) TableName() string { return "products" }

type Cart struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey"       json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User   *UserRef   `gorm:"foreignKey:UserID"          json:"user,omitempty"`
	Items  []CartItem `gorm:"foreignKey:CartID"          json:"items"`
	Total  float64    `gorm:"not null"                   json:"total"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Line returns the index of the line holding productID, or -1.
func (c *Cart) Line(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// ItemCount is the sum of line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

type CartItem struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"     json:"id"`
	CartID    uuid.UUID   `gorm:"type:uuid;index;not null" json:"-"`
	ProductID uuid.UUID   `gorm:"type:uuid;not null"       json:"productId"`
	Product   *ProductRef `gorm:"foreignKey:ProductID"     json:"product"`
	Quantity  int         `gorm:"not null"                 json:"quantity"`
	Price     float64     `gorm:"not null"                 json:"price"`
	Position  int         `gorm:"not null"                 json:"-"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

// All lists every migrated model.
func All() []any {
	return []any{&User{}, &Product{}, &Cart{}, &CartItem{}}
}
