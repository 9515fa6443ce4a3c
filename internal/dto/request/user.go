package request

// UpdateProfileRequest changes only the fields that are present.
type UpdateProfileRequest struct {
	FullName *string `json:"fullname,omitempty" validate:"omitempty,min=2,max=80"`
	Gender   *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,url"`
}
