package contract

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/newsdesk/pkg/schema"
)

type manifest struct {
	Endpoints []manifestEndpoint `yaml:"endpoints"`
}

type manifestEndpoint struct {
	Input   *manifestShape `yaml:"input,omitempty"`
	Query   *manifestShape `yaml:"query,omitempty"`
	Name    string         `yaml:"name"`
	Method  string         `yaml:"method"`
	Path    string         `yaml:"path"`
	Summary string         `yaml:"summary,omitempty"`
	Output  string         `yaml:"output,omitempty"`
	Upload  string         `yaml:"upload,omitempty"`
	Params  []string       `yaml:"params,omitempty"`
	Stages  []string       `yaml:"stages,omitempty"`
	Status  int            `yaml:"status"`
}

type manifestShape struct {
	Type   string          `yaml:"type"`
	Fields []manifestField `yaml:"fields"`
}

type manifestField struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Default  string   `yaml:"default,omitempty"`
	Rules    []string `yaml:"rules,omitempty"`
	Sanitize []string `yaml:"sanitize,omitempty"`
	Required bool     `yaml:"required,omitempty"`
}

// Manifest writes a YAML document listing every endpoint with its stages
// and payload fields.
func Manifest(w io.Writer, eps []Endpoint) error {
	if len(eps) == 0 {
		return ErrNoEndpoints
	}

	doc := manifest{Endpoints: make([]manifestEndpoint, 0, len(eps))}
	for _, ep := range eps {
		me := manifestEndpoint{
			Name:    ep.Name,
			Method:  ep.Method,
			Path:    ep.Path,
			Summary: ep.Summary,
			Upload:  ep.Upload,
			Params:  ep.PathParams,
			Stages:  ep.Stages,
			Status:  ep.Status,
			Input:   shapeDoc(ep.Input),
			Query:   shapeDoc(ep.Query),
		}
		if ep.Output != nil {
			me.Output = ep.Output.String()
		}
		doc.Endpoints = append(doc.Endpoints, me)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("contract: encode manifest: %w", err)
	}
	return enc.Close()
}

func shapeDoc(s *schema.Shape) *manifestShape {
	if s == nil {
		return nil
	}
	out := &manifestShape{Type: s.Type.String(), Fields: make([]manifestField, 0, len(s.Fields))}
	for _, f := range s.Fields {
		out.Fields = append(out.Fields, manifestField{
			Name:     f.Name,
			Type:     f.Type.String(),
			Default:  f.Default,
			Rules:    f.Rules,
			Sanitize: f.Sanitize,
			Required: f.Required,
		})
	}
	return out
}
