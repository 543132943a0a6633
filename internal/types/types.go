// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, services, and storage can all import types without depending
// on each other.
package types

// Entity is the constraint every persisted resource satisfies.
//
// It is written against the pointer type (*T) so that generic code can
// both read the identity from a value and clear/overwrite it:
//
//	service.New[types.Student](store) // P is inferred as *types.Student
type Entity[T any] interface {
	*T
	Identity() int64
	SetIdentity(id int64)
}

// Student represents a student record.
//
// Struct tags serve three purposes:
//
//  1. json:"..."     — the field name on the wire.
//  2. gorm:"..."     — column mapping for the ORM.
//  3. validate:"..." — rules checked by go-playground/validator before
//     the record reaches the service layer.
type Student struct {
	ID   int64  `json:"id"   gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:100;not null" validate:"required,min=2,max=100"`
	Age  int    `json:"age"  gorm:"not null"          validate:"min=5,max=120"`
}

func (s *Student) Identity() int64      { return s.ID }
func (s *Student) SetIdentity(id int64) { s.ID = id }

// TableName pins the table name so it does not depend on GORM's
// pluralisation rules.
func (Student) TableName() string { return "students" }

// Product represents a product record. Price is kept as float64 to match
// the decimal range 0.01–10000; callers needing exact money arithmetic
// should not use this type.
type Product struct {
	ID    int64   `json:"id"    gorm:"primaryKey;autoIncrement"`
	Name  string  `json:"name"  gorm:"size:100;not null" validate:"required,min=2,max=100"`
	Price float64 `json:"price" gorm:"not null"          validate:"min=0.01,max=10000"`
}

func (p *Product) Identity() int64      { return p.ID }
func (p *Product) SetIdentity(id int64) { p.ID = id }

func (Product) TableName() string { return "products" }

// Credentials is the body of POST /auth/login. It is never persisted.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned on a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}
