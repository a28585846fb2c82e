package analytics

type FieldKind string

const (
	TextField   FieldKind = "text"
	IntField    FieldKind = "int"
	FileField   FieldKind = "file"
	SelectField FieldKind = "select"
)

// FormSchema describes the options form of a driver
type FormSchema struct {
	Sections []FormSection `json:"sections"`
}

type FormSection struct {
	Title  string      `json:"title"`
	Fields []FormField `json:"fields"`
}

type FormField struct {
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	Kind       FieldKind         `json:"kind"`
	Required   bool              `json:"required,omitempty"`
	Options    map[string]string `json:"options,omitempty"`
	Extensions []string          `json:"extensions,omitempty"`
}

// Field returns the named field of any section
func (s FormSchema) Field(name string) (FormField, bool) {
	for _, section := range s.Sections {
		for _, f := range section.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return FormField{}, false
}
