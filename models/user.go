package models

// User is the subset of a user record needed to reach their device.
type User struct {
	ID       string `json:"id" bson:"_id" gorm:"column:id;primaryKey" dynamodbav:"id"`
	FCMToken string `json:"fcmToken,omitempty" bson:"fcmToken,omitempty" gorm:"column:fcm_token" dynamodbav:"fcmToken,omitempty"`
}

func (User) TableName() string {
	return "users"
}
