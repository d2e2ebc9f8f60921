// server/domain/portfolio.go
package domain

// Collection names a portfolio record collection. The value doubles as the
// JSON key of the array inside its backing document.
type Collection string

const (
	Projects     Collection = "projects"
	Skills       Collection = "skills"
	Experiences  Collection = "experiences"
	Education    Collection = "education"
	Certificates Collection = "certificates"
)

// Collections lists every collection in display order.
var Collections = []Collection{Projects, Skills, Experiences, Education, Certificates}

// ParseCollection maps a URL segment to a Collection.
func ParseCollection(s string) (Collection, bool) {
	for _, c := range Collections {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Document is the file name of the JSON document holding c.
// Education and certificates share one document.
func (c Collection) Document() string {
	switch c {
	case Education, Certificates:
		return "education.json"
	default:
		return string(c) + ".json"
	}
}

// New returns an empty record of the entity type stored in c.
func (c Collection) New() Record {
	switch c {
	case Projects:
		return &Project{}
	case Skills:
		return &Skill{}
	case Experiences:
		return &Experience{}
	case Education:
		return &EducationEntry{}
	case Certificates:
		return &Certificate{}
	}
	return nil
}

// Record is implemented by every portfolio entity.
type Record interface {
	RecordID() int
	SetRecordID(id int)
}

type Project struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Link         string   `json:"link"`
	Technologies []string `json:"technologies"`
}

type Skill struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Category string `json:"category"`
}

type Experience struct {
	ID           int      `json:"id"`
	Role         string   `json:"role"`
	Company      string   `json:"company"`
	Period       string   `json:"period"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

type EducationEntry struct {
	ID          int    `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

type Certificate struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Issuer         string `json:"issuer"`
	Date           string `json:"date"`
	CredentialLink string `json:"credentialLink"`
}

func (p *Project) RecordID() int         { return p.ID }
func (p *Project) SetRecordID(id int)    { p.ID = id }
func (s *Skill) RecordID() int           { return s.ID }
func (s *Skill) SetRecordID(id int)      { s.ID = id }
func (e *Experience) RecordID() int      { return e.ID }
func (e *Experience) SetRecordID(id int) { e.ID = id }

func (e *EducationEntry) RecordID() int      { return e.ID }
func (e *EducationEntry) SetRecordID(id int) { e.ID = id }
func (c *Certificate) RecordID() int         { return c.ID }
func (c *Certificate) SetRecordID(id int)    { c.ID = id }
