package user

type Profile struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

type UpdatePhotoRequest struct {
	PhotoURL string `json:"photoURL"`
}
