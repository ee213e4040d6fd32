// Package models defines the client-side CV document.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reserved document keys managed by the client store.
const (
	FieldID           = "id"
	FieldLastModified = "lastModified"
	FieldIsDraft      = "isDraft"
	FieldTitle        = "title"
)

var (
	ErrIncorrectField = errors.New("field must be name=value")
	ErrReservedField  = errors.New("field is managed by the store")
)

// CV is a canonical CV document plus the offline bookkeeping fields. Any
// other document fields are kept verbatim in Document.
type CV struct {
	ID           string
	LastModified time.Time
	IsDraft      bool
	Document     map[string]any
}

// NewCV returns an empty CV with a fresh id.
func NewCV(title string) *CV {
	return &CV{
		ID:       uuid.NewString(),
		Document: map[string]any{FieldTitle: title},
	}
}

func (c *CV) Title() string {
	s, _ := c.Document[FieldTitle].(string)
	return s
}

// Set assigns a document field. Reserved keys are rejected.
func (c *CV) Set(name string, value any) error {
	switch name {
	case FieldID, FieldLastModified, FieldIsDraft:
		return fmt.Errorf("%w: %s", ErrReservedField, name)
	}
	if c.Document == nil {
		c.Document = make(map[string]any)
	}
	c.Document[name] = value
	return nil
}

// FieldNames returns the document keys in sorted order.
func (c *CV) FieldNames() []string {
	names := make([]string, 0, len(c.Document))
	for k := range c.Document {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (c CV) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Document)+3)
	for k, v := range c.Document {
		out[k] = v
	}
	out[FieldID] = c.ID
	out[FieldIsDraft] = c.IsDraft
	if !c.LastModified.IsZero() {
		out[FieldLastModified] = c.LastModified.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

func (c *CV) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if doc == nil {
		return errors.New("cv document must be a JSON object")
	}

	*c = CV{}
	if id, ok := doc[FieldID].(string); ok {
		c.ID = id
	}
	if d, ok := doc[FieldIsDraft].(bool); ok {
		c.IsDraft = d
	}
	if s, ok := doc[FieldLastModified].(string); ok && s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("lastModified: %w", err)
		}
		c.LastModified = t
	}

	delete(doc, FieldID)
	delete(doc, FieldIsDraft)
	delete(doc, FieldLastModified)
	c.Document = doc
	return nil
}

// FieldsFromLines parses "name=value" lines into document fields.
func FieldsFromLines(lines []string) (map[string]string, error) {
	fields := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, ErrIncorrectField
		}
		fields[name] = strings.TrimSpace(value)
	}
	return fields, nil
}
