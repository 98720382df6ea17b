package zone

import (
	"bytes"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/zonemap/pkg/errors"
	"github.com/matzehuels/zonemap/pkg/layout"
)

// RuleSet is a named, serializable zone configuration.
type RuleSet struct {
	Name    string
	Axis    layout.AxisRange
	Default Zone
	Rules   []Rule
	Labels  []Label
}

// Classifier builds a classifier over the rule set's own axis.
func (rs RuleSet) Classifier() (*Classifier, error) {
	def := rs.Default
	if def.Color == "" {
		def = Unclassified
	}
	c, err := NewClassifier(rs.Axis, rs.Rules, def)
	if err != nil {
		return nil, err
	}
	return c.WithLabels(rs.Labels), nil
}

type ruleSetFile struct {
	Name    string            `toml:"name"`
	Axis    *layout.AxisRange `toml:"axis,omitempty"`
	Default Zone              `toml:"default"`
	Rules   []ruleFile        `toml:"rule"`
	Labels  []Label           `toml:"label,omitempty"`
}

type ruleFile struct {
	Name  string  `toml:"name"`
	Color string  `toml:"color"`
	X0    float64 `toml:"x0"`
	X1    float64 `toml:"x1"`
	Y0    float64 `toml:"y0"`
	Y1    float64 `toml:"y1"`
}

// DecodeRuleSet reads a TOML rule set. A missing axis defaults to 1–9.
func DecodeRuleSet(r io.Reader) (RuleSet, error) {
	var f ruleSetFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return RuleSet{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode zone rules")
	}
	rs := RuleSet{
		Name:    f.Name,
		Axis:    layout.DefaultAxis,
		Default: f.Default,
		Labels:  f.Labels,
	}
	if f.Axis != nil {
		rs.Axis = *f.Axis
	}
	for _, r := range f.Rules {
		rs.Rules = append(rs.Rules, FileRule(r.Name, r.Color, r.X0, r.X1, r.Y0, r.Y1))
	}
	return rs, nil
}

// LoadRuleSet reads a TOML rule set from path.
func LoadRuleSet(path string) (RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return RuleSet{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open zone rules")
	}
	defer f.Close()
	return DecodeRuleSet(f)
}

// EncodeTOML writes the rule set in the format DecodeRuleSet reads.
func (rs RuleSet) EncodeTOML(w io.Writer) error {
	axis := rs.Axis
	f := ruleSetFile{
		Name:    rs.Name,
		Axis:    &axis,
		Default: rs.Default,
		Labels:  rs.Labels,
	}
	for _, r := range rs.Rules {
		f.Rules = append(f.Rules, ruleFile{
			Name: r.Zone.Name, Color: r.Zone.Color,
			X0: r.X0, X1: r.X1, Y0: r.Y0, Y1: r.Y1,
		})
	}
	return toml.NewEncoder(w).Encode(f)
}

// String returns the TOML encoding.
func (rs RuleSet) String() string {
	var buf bytes.Buffer
	if err := rs.EncodeTOML(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// FileRule builds a rule from flat fields, the shape rules take in
// configuration files.
func FileRule(name, color string, x0, x1, y0, y1 float64) Rule {
	return Rule{
		Rect: Rect{X0: x0, X1: x1, Y0: y0, Y1: y1},
		Zone: Zone{Name: name, Color: color},
	}
}
