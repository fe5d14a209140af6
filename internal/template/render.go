package template

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// FormatVersion is the declarative template format version emitted in
	// every rendered artifact.
	FormatVersion = "2010-09-09"

	// HashOutputName is the output carrying the SHA-256 content hash used
	// to validate a rendered template after the fact.
	HashOutputName = "templateValidationHash"

	// DateOutputName is the output recording when the template was rendered.
	DateOutputName = "dateGenerated"
)

// Render produces the deterministic JSON artifact for a node and returns it
// together with its content hash. The hash covers the whole document
// (including the generation timestamp) except the hash output itself, so a
// rendered artifact can be re-validated byte for byte.
func Render(n *Node, generatedAt time.Time) ([]byte, string, error) {
	doc := n.document()

	outputs := doc["Outputs"].(map[string]any)
	outputs[DateOutputName] = map[string]any{
		"Value":       generatedAt.UTC().Format(time.RFC3339),
		"Description": "UTC timestamp of when this template was rendered",
	}

	hash, err := hashDocument(doc)
	if err != nil {
		return nil, "", err
	}

	outputs[HashOutputName] = map[string]any{
		"Value":       hash,
		"Description": "SHA-256 hash of this template, for validating it was not modified after rendering",
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to render template %s: %w", n.Name, err)
	}
	return data, hash, nil
}

// ValidateRendered re-computes the content hash of a rendered artifact and
// compares it to the embedded hash output.
func ValidateRendered(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse rendered template: %w", err)
	}

	outputs, ok := doc["Outputs"].(map[string]any)
	if !ok {
		return fmt.Errorf("rendered template has no outputs")
	}
	hashOutput, ok := outputs[HashOutputName].(map[string]any)
	if !ok {
		return fmt.Errorf("rendered template has no %s output", HashOutputName)
	}
	declared, ok := hashOutput["Value"].(string)
	if !ok {
		return fmt.Errorf("%s output has no value", HashOutputName)
	}

	delete(outputs, HashOutputName)
	computed, err := hashDocument(doc)
	if err != nil {
		return err
	}
	if computed != declared {
		return fmt.Errorf("template hash mismatch: declared %s, computed %s", declared, computed)
	}
	return nil
}

// hashDocument hashes the compact JSON encoding of a document. Go's JSON
// encoder writes map keys in sorted order, so the encoding is stable.
func hashDocument(doc map[string]any) (string, error) {
	compact, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode template for hashing: %w", err)
	}
	sum := sha256.Sum256(compact)
	return hex.EncodeToString(sum[:]), nil
}

// document builds the JSON structure of the template. Empty sections are
// still emitted as empty objects so validation roundtrips cleanly.
func (n *Node) document() map[string]any {
	params := make(map[string]any, len(n.paramOrder))
	for _, p := range n.Parameters() {
		body := map[string]any{"Type": p.Type}
		if p.Description != "" {
			body["Description"] = p.Description
		}
		if p.Default != "" {
			body["Default"] = p.Default
		}
		if p.AllowedPattern != "" {
			body["AllowedPattern"] = p.AllowedPattern
		}
		if p.ConstraintDescription != "" {
			body["ConstraintDescription"] = p.ConstraintDescription
		}
		if p.MinLength > 0 {
			body["MinLength"] = p.MinLength
		}
		if p.MaxLength > 0 {
			body["MaxLength"] = p.MaxLength
		}
		params[p.Name] = body
	}

	resources := make(map[string]any, len(n.resourceOrder))
	for _, r := range n.Resources() {
		body := map[string]any{"Type": r.Kind}
		if len(r.Properties) > 0 {
			body["Properties"] = r.Properties
		}
		if len(r.DependsOn) > 0 {
			body["DependsOn"] = r.DependsOn
		}
		resources[r.ID] = body
	}

	outputs := make(map[string]any, len(n.outputOrder)+2)
	for _, o := range n.Outputs() {
		body := map[string]any{"Value": o.Value}
		if o.Description != "" {
			body["Description"] = o.Description
		}
		outputs[o.Name] = body
	}

	doc := map[string]any{
		"AWSTemplateFormatVersion": FormatVersion,
		"Parameters":               params,
		"Resources":                resources,
		"Outputs":                  outputs,
	}
	if n.Description != "" {
		doc["Description"] = n.Description
	}
	if len(n.Mappings) > 0 {
		doc["Mappings"] = n.Mappings
	}
	return doc
}
