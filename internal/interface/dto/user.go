package dto

// ProfileRequest lists the profile fields a user may set on PUT /api/users/me
type ProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Nationality *string `json:"nationality,omitempty" validate:"omitempty,country"`
	PhotoURL    *string `json:"photoUrl,omitempty" validate:"omitempty,url"`
}

// PreferencesRequest is the partial body of PATCH /api/users/me/preferences
type PreferencesRequest struct {
	Email          *bool `json:"email,omitempty"`
	Push           *bool `json:"push,omitempty"`
	BookingUpdates *bool `json:"bookingUpdates,omitempty"`
	PriceAlerts    *bool `json:"priceAlerts,omitempty"`
	VisaUpdates    *bool `json:"visaUpdates,omitempty"`
	Marketing      *bool `json:"marketing,omitempty"`
}

// PushSubscriptionRequest mirrors the browser PushSubscription JSON
type PushSubscriptionRequest struct {
	Endpoint  string            `json:"endpoint" validate:"required,url,max=2048"`
	Keys      map[string]string `json:"keys" validate:"required,dive,keys,oneof=p256dh auth,endkeys,required"`
	UserAgent *string           `json:"userAgent,omitempty" validate:"omitempty,max=500"`
}

// SetAdminRequest grants or revokes the admin role
type SetAdminRequest struct {
	Admin *bool `json:"admin" validate:"required"`
}
