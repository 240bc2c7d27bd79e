package event

const UserRegisteredDestination string = "user_registered"

type UserRegisteredMessage struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	FullName string `json:"full_name"`
}
