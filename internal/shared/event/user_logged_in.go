package event

const UserLoggedInDestination string = "user_logged_in"

type UserLoggedInMessage struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	IPAddress string `json:"ip_address"`
}
