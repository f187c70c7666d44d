package entity

const (
	CollectionUniversities = "universities"
	CollectionPrograms     = "programs"
)

// University is a listed institution
type University struct {
	Meta
	Name        string   `json:"name" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"required,slug,max=120"`
	Country     string   `json:"country" validate:"required,country"`
	City        string   `json:"city" validate:"required,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Website     *string  `json:"website,omitempty" validate:"omitempty,url"`
	LogoURL     *string  `json:"logoUrl,omitempty" validate:"omitempty,url"`
	Ranking     *int     `json:"ranking,omitempty" validate:"omitempty,gte=1"`
	TuitionFrom *float64 `json:"tuitionFrom,omitempty" validate:"omitempty,gte=0"`
	Currency    string   `json:"currency" validate:"required,currency"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=40"`
	Featured    bool     `json:"featured"`
}

func UniversityFromRecord(id string, rec Record) (*University, error) {
	u := &University{}
	if err := decodeEntity(id, rec, u, &u.Meta); err != nil {
		return nil, err
	}
	if u.Currency == "" {
		u.Currency = DefaultCurrency
	}
	return u, nil
}

var UniversityCodec = Codec[*University]{
	Collection: CollectionUniversities,
	FromRecord: UniversityFromRecord,
	ToRecord:   func(u *University) Record { return u.ToRecord() },
}

func (u *University) ToRecord() Record {
	return encodeRecord(u)
}

func (u *University) Validate() error {
	return validationResult(ValidateStruct(u))
}

func (u *University) WithUpdates(partial Record) (*University, error) {
	return WithUpdates(u, partial, UniversityFromRecord)
}

func (u *University) Feature() (*University, error) {
	return u.WithUpdates(Record{"featured": true})
}

func (u *University) Unfeature() (*University, error) {
	return u.WithUpdates(Record{"featured": false})
}

// Degree levels offered by programs
const (
	DegreeBachelor = "bachelor"
	DegreeMaster   = "master"
	DegreePhD      = "phd"
	DegreeDiploma  = "diploma"
)

// Program is a course of study at a university
type Program struct {
	Meta
	UniversityID   string   `json:"universityId" validate:"required"`
	Name           string   `json:"name" validate:"required,max=200"`
	Degree         string   `json:"degree" validate:"required,oneof=bachelor master phd diploma"`
	Field          string   `json:"field" validate:"required,max=100"`
	DurationMonths int      `json:"durationMonths" validate:"gte=1,lte=120"`
	Tuition        *float64 `json:"tuition,omitempty" validate:"omitempty,gte=0"`
	Currency       string   `json:"currency" validate:"required,currency"`
	Language       string   `json:"language" validate:"required,max=40"`
	IntakeMonths   []int    `json:"intakeMonths,omitempty" validate:"omitempty,max=12,dive,gte=1,lte=12"`
	Deadline       *string  `json:"applicationDeadline,omitempty" validate:"omitempty,isodate"`
}

func ProgramFromRecord(id string, rec Record) (*Program, error) {
	p := &Program{}
	if err := decodeEntity(id, rec, p, &p.Meta); err != nil {
		return nil, err
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Language == "" {
		p.Language = "English"
	}
	return p, nil
}

var ProgramCodec = Codec[*Program]{
	Collection: CollectionPrograms,
	FromRecord: ProgramFromRecord,
	ToRecord:   func(p *Program) Record { return p.ToRecord() },
}

func (p *Program) ToRecord() Record {
	return encodeRecord(p)
}

func (p *Program) Validate() error {
	return validationResult(ValidateStruct(p))
}

func (p *Program) WithUpdates(partial Record) (*Program, error) {
	return WithUpdates(p, partial, ProgramFromRecord)
}

// AcceptsApplicationsOn reports whether the deadline (if any) has not passed on date
func (p *Program) AcceptsApplicationsOn(date string) bool {
	if p.Deadline == nil {
		return true
	}
	after, ok := dateAfter(date, *p.Deadline)
	return ok && !after
}
