package subjects

// DefaultSubjects is the subject-area catalog offered by the profile form.
var DefaultSubjects = []string{
	"מתמטיקה",
	"אנגלית",
	"עברית",
	"ערבית",
	"פיזיקה",
	"כימיה",
	"ביולוגיה",
	"היסטוריה",
	"גיאוגרפיה",
	"חינוך גופני",
	"מורה בכיתה",
	"חינוך מיוחד",
	"מדעי המחשב",
}

// SchoolTypes lists the school sectors a teacher can pick.
var SchoolTypes = []string{"יהודי", "בדואי", "ערבי", "דרוזי", "צרקסי", "אחר"}

// Languages lists the supported teaching languages.
var Languages = []string{"עברית", "ערבית"}

// EducationLevels lists the education tracks and stages a teacher can tick.
var EducationLevels = []string{"ממלכתי", "ממלכתי דתי", "חרדי", "על יסודי", "יסודי"}

// Education stages the prediction service understands.
const (
	LevelElementary = "יסודי"
	LevelSecondary  = "על יסודי"
)

// Catalog is an immutable, ordered list of valid subject labels.
type Catalog struct {
	labels []string
	index  map[string]struct{}
}

// NewCatalog copies labels so later changes by the caller cannot leak in.
func NewCatalog(labels []string) *Catalog {
	c := &Catalog{
		labels: make([]string, len(labels)),
		index:  make(map[string]struct{}, len(labels)),
	}
	copy(c.labels, labels)
	for _, l := range labels {
		c.index[l] = struct{}{}
	}
	return c
}

// Default returns the catalog built from DefaultSubjects.
func Default() *Catalog {
	return NewCatalog(DefaultSubjects)
}

// Labels returns a copy of the catalog in its original order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Len returns the number of labels.
func (c *Catalog) Len() int {
	return len(c.labels)
}

// Contains reports whether label is exactly a catalog entry. This is the
// only check that makes a subject area acceptable downstream; ranking
// never validates.
func (c *Catalog) Contains(label string) bool {
	_, ok := c.index[label]
	return ok
}

// Rank ranks the catalog against query. See Rank.
func (c *Catalog) Rank(query string) []string {
	return Rank(query, c.labels)
}
