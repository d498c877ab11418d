package texts

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/pixil98/go-errors"
)

// Position is a point inside a zone.
type Position struct {
	X float64
	Y float64
	Z float64
}

func (p Position) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", p.X, p.Y, p.Z)
}

// FloatingText is a named text anchored at a position within a zone. Zone is
// a name only; zones are owned by the world server.
type FloatingText struct {
	Name      string
	Zone      string
	Position  Position
	Title     string
	Body      string
	Owner     string
	Removable bool
}

// Key identifies a text within a registry.
type Key struct {
	Zone string
	Name string
}

func (k Key) String() string {
	return k.Zone + "/" + k.Name
}

func (ft FloatingText) Key() Key {
	return Key{Zone: ft.Zone, Name: ft.Name}
}

func (ft FloatingText) Validate() error {
	el := errors.NewErrorList()

	el.Add(validateName("name", ft.Name))
	el.Add(validateName("zone", ft.Zone))

	if ft.Title == "" && ft.Body == "" {
		el.Add(fmt.Errorf("title or text must be set"))
	}

	return el.Err()
}

func validateName(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s must be set", field)
	}
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return fmt.Errorf("%s must not contain control characters", field)
	}
	return nil
}

// record is the persisted form of a text: zone and name are the document keys.
type record struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Title string  `json:"title"`
	Text  string  `json:"text"`
	Owner string  `json:"owner,omitempty"`
}

// UnmarshalJSON also accepts records written by 2.x installs, which stored
// coordinates as Xvec/Yvec/Zvec and upper-cased the other keys.
func (r *record) UnmarshalJSON(b []byte) error {
	type plain record
	var aux struct {
		plain
		Xvec *float64 `json:"Xvec"`
		Yvec *float64 `json:"Yvec"`
		Zvec *float64 `json:"Zvec"`
	}

	err := json.Unmarshal(b, &aux)
	if err != nil {
		return err
	}

	*r = record(aux.plain)
	if aux.Xvec != nil {
		r.X = *aux.Xvec
	}
	if aux.Yvec != nil {
		r.Y = *aux.Yvec
	}
	if aux.Zvec != nil {
		r.Z = *aux.Zvec
	}

	return nil
}

func newRecord(ft FloatingText) record {
	return record{
		X:     ft.Position.X,
		Y:     ft.Position.Y,
		Z:     ft.Position.Z,
		Title: ft.Title,
		Text:  ft.Body,
		Owner: ft.Owner,
	}
}

func (r record) text(zone, name string, removable bool) FloatingText {
	return FloatingText{
		Name:      name,
		Zone:      zone,
		Position:  Position{X: r.X, Y: r.Y, Z: r.Z},
		Title:     r.Title,
		Body:      r.Text,
		Owner:     r.Owner,
		Removable: removable,
	}
}
