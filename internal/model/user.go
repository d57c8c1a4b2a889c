package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is an authenticated account. Role holds a Role.Code.
type User struct {
	BaseModel
	Name         string  `gorm:"type:varchar(255);not null" json:"name"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string  `gorm:"type:varchar(255);not null" json:"-"`
	Role         string  `gorm:"type:varchar(50);not null;default:'user';index" json:"role"`
	Banned       bool    `gorm:"not null;default:false" json:"banned"`
	TokenVersion string  `gorm:"type:varchar(255);default:''" json:"-"` // single session enforcement
	Orders       []Order `gorm:"foreignKey:CreatedBy" json:"-"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Banned    bool      `json:"banned"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Banned:    u.Banned,
		CreatedAt: u.CreatedAt,
	}
}
