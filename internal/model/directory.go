package model

// User is a chat participant that can receive push notifications.
type User struct {
	ID       string `gorm:"primaryKey;size:64" bson:"_id" json:"id"`
	Name     string `bson:"name" json:"name"`
	FCMToken string `gorm:"column:fcm_token;type:text" bson:"fcmToken" json:"fcmToken"`
	Phone    string `gorm:"size:32" bson:"phone" json:"phone"`
}

// Group is a named chat with an ordered member list.
type Group struct {
	ID      string   `gorm:"primaryKey;size:64" bson:"_id" json:"id"`
	Name    string   `bson:"groupName" json:"groupName"`
	Members []string `gorm:"serializer:json;type:text" bson:"members" json:"members"`
}

func (Group) TableName() string { return "chat_groups" }
