package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	User         Principal `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	Token string `json:"token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type RegisterRequest struct {
	Email             string `json:"email"`
	FullName          string `json:"fullName"`
	Role              string `json:"role"`
	TemporaryPassword string `json:"temporaryPassword"`
}

type UpdateUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

type GrantRequest struct {
	CanView   bool `json:"canView"`
	CanCreate bool `json:"canCreate"`
	CanEdit   bool `json:"canEdit"`
}

type CreateCollectionRequest struct {
	Name string `json:"name"`
}

type CreateItemRequest struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

type UpdateItemRequest struct {
	Title string `json:"title"`
}

type ActivityListData struct {
	Items []ActivityEntry `json:"items"`
}

type UserListData struct {
	Users []Principal `json:"users"`
}

type UserData struct {
	User Principal `json:"user"`
}

type CollectionData struct {
	Collection Collection `json:"collection"`
}

type ItemData struct {
	Item Item `json:"item"`
}
