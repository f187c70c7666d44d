package entity

const (
	CollectionUsers                   = "users"
	CollectionNotificationPreferences = "notificationPreferences"
	CollectionPushSubscriptions       = "pushSubscriptions"
)

// User is an application profile keyed by the identity provider's subject
type User struct {
	Meta
	Email       string  `json:"email" validate:"required,email"`
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Nationality *string `json:"nationality,omitempty" validate:"omitempty,country"`
	PhotoURL    *string `json:"photoUrl,omitempty" validate:"omitempty,url"`
	Admin       bool    `json:"admin"`
	LastLoginAt *string `json:"lastLoginAt,omitempty"`
}

func UserFromRecord(id string, rec Record) (*User, error) {
	u := &User{}
	if err := decodeEntity(id, rec, u, &u.Meta); err != nil {
		return nil, err
	}
	return u, nil
}

var UserCodec = Codec[*User]{
	Collection: CollectionUsers,
	FromRecord: UserFromRecord,
	ToRecord:   func(u *User) Record { return u.ToRecord() },
}

func (u *User) ToRecord() Record {
	return encodeRecord(u)
}

func (u *User) Validate() error {
	return validationResult(ValidateStruct(u))
}

func (u *User) WithUpdates(partial Record) (*User, error) {
	return WithUpdates(u, partial, UserFromRecord)
}

// NotificationPreferences is stored under the owning user's id
type NotificationPreferences struct {
	Meta
	Email          bool `json:"email"`
	Push           bool `json:"push"`
	BookingUpdates bool `json:"bookingUpdates"`
	PriceAlerts    bool `json:"priceAlerts"`
	VisaUpdates    bool `json:"visaUpdates"`
	Marketing      bool `json:"marketing"`
}

// DefaultNotificationPreferences applies to users who never saved any
func DefaultNotificationPreferences(userID string) *NotificationPreferences {
	now := FormatTimestamp(Now())
	return &NotificationPreferences{
		Meta:           Meta{ID: userID, CreatedAt: now, UpdatedAt: now},
		Email:          true,
		Push:           false,
		BookingUpdates: true,
		PriceAlerts:    true,
		VisaUpdates:    true,
		Marketing:      false,
	}
}

func NotificationPreferencesFromRecord(id string, rec Record) (*NotificationPreferences, error) {
	p := DefaultNotificationPreferences(id)
	if err := decodeEntity(id, rec, p, &p.Meta); err != nil {
		return nil, err
	}
	return p, nil
}

var NotificationPreferencesCodec = Codec[*NotificationPreferences]{
	Collection: CollectionNotificationPreferences,
	FromRecord: NotificationPreferencesFromRecord,
	ToRecord:   func(p *NotificationPreferences) Record { return p.ToRecord() },
}

func (p *NotificationPreferences) ToRecord() Record {
	return encodeRecord(p)
}

func (p *NotificationPreferences) Validate() error {
	return nil
}

func (p *NotificationPreferences) WithUpdates(partial Record) (*NotificationPreferences, error) {
	return WithUpdates(p, partial, NotificationPreferencesFromRecord)
}

// Allows reports whether an email notification of kind may be sent
func (p *NotificationPreferences) Allows(kind string) bool {
	if !p.Email {
		return false
	}
	switch kind {
	case NotificationBookingConfirmed, NotificationBookingPaid, NotificationBookingCancelled, NotificationBookingRefunded:
		return p.BookingUpdates
	case NotificationPriceAlertTriggered:
		return p.PriceAlerts
	case NotificationVisaStatusChanged:
		return p.VisaUpdates
	case NotificationMarketing:
		return p.Marketing
	}
	return true
}

// PushSubscription is a browser push endpoint registered by a user
type PushSubscription struct {
	Meta
	UserID    string            `json:"userId" validate:"required"`
	Endpoint  string            `json:"endpoint" validate:"required,url"`
	Keys      map[string]string `json:"keys" validate:"required,dive,keys,oneof=p256dh auth,endkeys,required"`
	UserAgent *string           `json:"userAgent,omitempty" validate:"omitempty,max=500"`
}

func PushSubscriptionFromRecord(id string, rec Record) (*PushSubscription, error) {
	s := &PushSubscription{}
	if err := decodeEntity(id, rec, s, &s.Meta); err != nil {
		return nil, err
	}
	return s, nil
}

var PushSubscriptionCodec = Codec[*PushSubscription]{
	Collection: CollectionPushSubscriptions,
	FromRecord: PushSubscriptionFromRecord,
	ToRecord:   func(s *PushSubscription) Record { return s.ToRecord() },
}

func (s *PushSubscription) ToRecord() Record {
	return encodeRecord(s)
}

func (s *PushSubscription) Validate() error {
	return validationResult(ValidateStruct(s))
}
