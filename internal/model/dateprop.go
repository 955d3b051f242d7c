package model

// DateProperty is a claim property that can date an entity.
type DateProperty struct {
	ID          string `json:"id" yaml:"id" mapstructure:"id"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
}

// DefaultDateProperties returns the date properties in precedence order.
// When an entity carries several, the first one in this list wins.
func DefaultDateProperties() []DateProperty {
	return []DateProperty{
		{ID: "P575", Description: "time of discovery or invention"},
		{ID: "P7589", Description: "date of assent"},
		{ID: "P577", Description: "publication date"},
		{ID: "P1191", Description: "date of first performance"},
		{ID: "P1619", Description: "date of official opening"},
		{ID: "P571", Description: "inception"},
		{ID: "P1249", Description: "time of earliest written record"},
		{ID: "P576", Description: "dissolved, abolished or demolished date"},
		{ID: "P8556", Description: "extinction date"},
		{ID: "P6949", Description: "announcement date"},
		{ID: "P1319", Description: "earliest date"},
		{ID: "P570", Description: "date of death"},
		{ID: "P569", Description: "date of birth"},
		{ID: "P580", Description: "start time"},
		{ID: "P582", Description: "end time"},
		{ID: "P7124", Description: "date of the first one"},
		{ID: "P7125", Description: "date of the latest one"},
	}
}

// DatePropertyDescription returns the description for id, or id itself when
// the property is not in props.
func DatePropertyDescription(props []DateProperty, id string) string {
	for _, p := range props {
		if p.ID == id {
			return p.Description
		}
	}
	return id
}
