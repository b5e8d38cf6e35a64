package treeio

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type rawFile struct {
	Package     string     `yaml:"package"`
	Imports     []string   `yaml:"imports,omitempty"`
	Annotations []string   `yaml:"annotations,omitempty"`
	Decls       []*rawDecl `yaml:"decls"`
}

// rawFields are the keys a declaration mapping may carry next to its kind
// key.
type rawFields struct {
	Modifiers   []string     `yaml:"modifiers,omitempty"`
	Annotations []string     `yaml:"annotations,omitempty"`
	TypeParams  []string     `yaml:"type_params,omitempty"`
	SuperTypes  []string     `yaml:"supertypes,omitempty"`
	Primary     []string     `yaml:"primary,omitempty"`
	Members     []*rawDecl   `yaml:"members,omitempty"`
	Receiver    string       `yaml:"receiver,omitempty"`
	Params      []string     `yaml:"params,omitempty"`
	Returns     string       `yaml:"returns,omitempty"`
	Type        string       `yaml:"type,omitempty"`
	Value       string       `yaml:"value,omitempty"`
	Expr        string       `yaml:"expr,omitempty"`
	Body        *rawBody     `yaml:"body,omitempty"`
	Contract    []string     `yaml:"contract,omitempty"`
	Get         *rawAccessor `yaml:"get,omitempty"`
	Set         *rawAccessor `yaml:"set,omitempty"`
}

type rawBody struct {
	Statements []string   `yaml:"statements,omitempty"`
	Result     string     `yaml:"result,omitempty"`
	Locals     []*rawDecl `yaml:"locals,omitempty"`
}

type rawAccessor struct {
	Modifiers []string `yaml:"modifiers,omitempty"`
	Param     string   `yaml:"param,omitempty"`
	Type      string   `yaml:"type,omitempty"`
	Expr      string   `yaml:"expr,omitempty"`
	Body      *rawBody `yaml:"body,omitempty"`
	Contract  []string `yaml:"contract,omitempty"`
}

// rawDecl is one declaration mapping together with where it was written.
type rawDecl struct {
	Kind string
	Name string
	Line int
	Col  int
	rawFields
	// Block is the value of an init mapping.
	Block *rawBody
}

var kindKeys = map[string]bool{
	"class": true, "interface": true, "object": true, "enum": true,
	"annotation": true, "anonymous": true, "fun": true, "val": true,
	"var": true, "typealias": true, "entry": true, "field": true,
	"init": true, "constructor": true,
}

func (d *rawDecl) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return &Error{Line: node.Line, Col: node.Column, Msg: "declaration must be a mapping"}
	}
	d.Line, d.Col = node.Line, node.Column
	var kindValue *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !kindKeys[key] {
			continue
		}
		if d.Kind != "" {
			return &Error{Line: node.Content[i].Line, Col: node.Content[i].Column,
				Msg: fmt.Sprintf("declaration has two kinds: %s and %s", d.Kind, key)}
		}
		d.Kind = key
		kindValue = node.Content[i+1]
	}
	if d.Kind == "" {
		return &Error{Line: node.Line, Col: node.Column, Msg: "declaration without a kind key"}
	}
	switch d.Kind {
	case "init":
		d.Block = &rawBody{}
		if kindValue.Kind == yaml.MappingNode {
			return kindValue.Decode(d.Block)
		}
		return nil
	case "constructor":
		if kindValue.Kind == yaml.MappingNode {
			if err := kindValue.Decode(&d.rawFields); err != nil {
				return err
			}
		}
		return nil
	}
	if kindValue.Kind != yaml.ScalarNode {
		return &Error{Line: kindValue.Line, Col: kindValue.Column, Msg: d.Kind + " name must be a scalar"}
	}
	d.Name = kindValue.Value
	return node.Decode(&d.rawFields)
}
