package verbs

const (
	Browse = VerbValue("browse")
	Get    = VerbValue("get")
	List   = VerbValue("list")
	Create = VerbValue("create")
	Delete = VerbValue("delete")
	Link   = VerbValue("link")
)

// Empty type to represent the _type_ Verb. Genesis is to support a key in a Context
type VerbKey struct{}

// Verb is a global instance of the VerbKey type
var Verb = VerbKey{}

// Will represent a specific Verb (get, create, delete, etc)
type VerbValue string

func (v VerbValue) String() string {
	return string(v)
}
