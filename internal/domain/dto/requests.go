package dto

type AccessRequest struct {
	Password string `json:"password" form:"password"`
}

type AccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	AccessNotAttempted = "not_attempted"
	AccessGranted      = "granted"
)

// SelectionPatch carries the controls changed by the user. Nil fields are left alone.
type SelectionPatch struct {
	Regions             *[]string `json:"regions" validate:"omitempty,dive,required"`
	Indices             *[]string `json:"indices" validate:"omitempty,dive,required"`
	ActiveRegion        *string   `json:"active_region"`
	ActiveIndex         *string   `json:"active_index"`
	ActiveArea          *string   `json:"active_area"`
	LocalAuthority      *string   `json:"local_authority"`
	Palette             *string   `json:"palette" validate:"omitempty,oneof=Spring Summer Autumn Winter"`
	Comparison          *[]string `json:"comparison" validate:"omitempty,dive,required"`
	WelshRegion         *string   `json:"welsh_region"`
	WelshLocalAuthority *string   `json:"welsh_local_authority"`
	WelshIndex          *string   `json:"welsh_index"`
	CombinedIndex       *string   `json:"combined_index"`
	Highlighted         *[]string `json:"highlighted" validate:"omitempty,dive,required"`
}
