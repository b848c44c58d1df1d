package entities

import "github.com/google/uuid"

type Testimonial struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	Testimonial string    `gorm:"type:text;not null" json:"testimonial"`

	Owner *User `gorm:"foreignKey:OwnerID"`
	Timestamp
}
