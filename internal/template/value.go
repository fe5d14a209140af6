package template

import (
	"encoding/json"
	"fmt"
)

// Value is anything that can appear on the right-hand side of a parameter
// binding, resource property, or output in a rendered template. The concrete
// types cover the intrinsic-function subset this tool emits.
type Value interface {
	json.Marshaler
}

// String is a literal string value.
type String string

// MarshalJSON implements json.Marshaler.
func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// Ref references a parameter or resource declared in the same template.
type Ref string

// MarshalJSON implements json.Marshaler.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Ref": string(r)})
}

// GetAtt retrieves an attribute of a resource, including the
// "Outputs.<name>" attributes of nested stack resources.
type GetAtt struct {
	Target    string
	Attribute string
}

// MarshalJSON implements json.Marshaler.
func (g GetAtt) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{"Fn::GetAtt": {g.Target, g.Attribute}})
}

// FindInMap looks a value up in a template mapping.
type FindInMap struct {
	Map       string
	TopKey    string
	SecondKey string
}

// MarshalJSON implements json.Marshaler.
func (f FindInMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{"Fn::FindInMap": {f.Map, f.TopKey, f.SecondKey}})
}

// SelectAZ selects the Nth availability zone of the deployment region.
type SelectAZ int

// MarshalJSON implements json.Marshaler.
func (s SelectAZ) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{
		"Fn::Select": {fmt.Sprintf("%d", int(s)), map[string]string{"Fn::GetAZs": ""}},
	})
}
