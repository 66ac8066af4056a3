package cards

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// Template is the card markup for one level, in the host's mustache-style
// syntax.
type Template struct {
	Name  string
	Front string
	Back  string
	CSS   string
}

type templateFile struct {
	CSS    string `yaml:"css"`
	Levels map[string]struct {
		Front string `yaml:"front"`
		Back  string `yaml:"back"`
	} `yaml:"levels"`
}

var loadTemplates = sync.OnceValues(func() (map[Level]Template, error) {
	var tf templateFile
	if err := yaml.Unmarshal(templatesYAML, &tf); err != nil {
		return nil, fmt.Errorf("cards: parse templates: %w", err)
	}
	out := make(map[Level]Template, len(Levels))
	for _, l := range Levels {
		t, ok := tf.Levels[l.String()]
		if !ok {
			return nil, fmt.Errorf("cards: no template for level %s", l)
		}
		out[l] = Template{Name: l.NoteTypeName(), Front: t.Front, Back: t.Back, CSS: tf.CSS}
	}
	return out, nil
})

// Template returns the card template for the level.
func (l Level) Template() (Template, error) {
	all, err := loadTemplates()
	if err != nil {
		return Template{}, err
	}
	t, ok := all[l]
	if !ok {
		return Template{}, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return t, nil
}
