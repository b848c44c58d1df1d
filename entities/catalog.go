package entities

import "github.com/google/uuid"

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Image       *string   `json:"image"`
	Description string    `gorm:"type:text" json:"description"`

	Timestamp
}

type Area struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`

	Timestamp
}

type Ingredient struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name        string    `gorm:"index;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       *string   `json:"img"`

	Timestamp
}
