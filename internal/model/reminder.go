package model

import "time"

// Reminder is a persisted reminder shared by its sender and receivers.
// Records are append-only; CreatedAt is assigned by the store on insert.
type Reminder struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserIDs   []string  `gorm:"serializer:json;type:text;not null" bson:"user_ids" json:"user_ids"`
	Datetime  string    `gorm:"size:16;index;not null" bson:"datetime" json:"datetime"`
	Message   string    `gorm:"type:text;not null" bson:"message" json:"message"`
	Important int       `gorm:"not null" bson:"important" json:"important"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;not null;default:CURRENT_TIMESTAMP" bson:"created_at" json:"created_at"`
}

// Delivery records the outcome of firing a reminder. A reminder with a
// delivery row is never fired again.
type Delivery struct {
	ID         string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	ReminderID string    `gorm:"size:36;uniqueIndex;not null" bson:"reminder_id" json:"reminder_id"`
	Status     string    `gorm:"size:16;not null" bson:"status" json:"status"`
	Sent       int       `bson:"sent" json:"sent"`
	Error      string    `gorm:"type:text" bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" bson:"created_at" json:"created_at"`
}

// TableName keeps deliveries next to the reminders table.
func (Delivery) TableName() string { return "reminder_deliveries" }

const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)
