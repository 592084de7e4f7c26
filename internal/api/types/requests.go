package types

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProjectCreateRequest struct {
	Name string `json:"name" validate:"required"`
}

type FilePatchRequest struct {
	Content string `json:"content" validate:"required"`
	// PreviousContentSHA256, when set, must match the stored content for the
	// patch to apply; a mismatch is rejected as a conflict.
	PreviousContentSHA256 string `json:"previous_content_sha256,omitempty" validate:"omitempty,len=64,hexadecimal"`
}
