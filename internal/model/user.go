package model

// DefaultProfilePicture is the placeholder shown when no picture is set or
// the profile could not be fetched.
const DefaultProfilePicture = "/user_icon.jpg"

type Profile struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	StudentID       string `json:"studentId"`
	Major           string `json:"major"`
	ProfilePicture  string `json:"profilePicture"`
	MorganConnected bool   `json:"morganConnected"`
}

// Identity is the display identity decoded from a bearer token. It is never
// used for authorization decisions.
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
