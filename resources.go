package mcp

import (
	"encoding/json"
	"fmt"
)

// Resource is a readable document the server exposes.
type Resource struct {
	URI         string       `json:"uri"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	MimeType    *string      `json:"mimeType,omitempty"`
	Size        *int64       `json:"size,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// ResourceTemplate describes a family of resources addressed by an
// RFC 6570 URI template.
type ResourceTemplate struct {
	URITemplate string       `json:"uriTemplate"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	MimeType    *string      `json:"mimeType,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// ResourceContent is the tagged union of text or base64-encoded blob
// content returned by resources/read.
type ResourceContent interface {
	resourceContent()
	ContentURI() string
}

// TextResourceContent is the "text" variant of ResourceContent.
type TextResourceContent struct {
	URI      string  `json:"uri"`
	MimeType *string `json:"mimeType,omitempty"`
	Text     string  `json:"text"`
}

func (c *TextResourceContent) resourceContent() {}
func (c *TextResourceContent) ContentURI() string { return c.URI }

// BlobResourceContent is the "blob" variant of ResourceContent; Blob is
// base64-encoded binary data.
type BlobResourceContent struct {
	URI      string  `json:"uri"`
	MimeType *string `json:"mimeType,omitempty"`
	Blob     string  `json:"blob"`
}

func (c *BlobResourceContent) resourceContent() {}
func (c *BlobResourceContent) ContentURI() string { return c.URI }

type resourceContentEnvelope struct {
	URI      string          `json:"uri"`
	MimeType *string         `json:"mimeType,omitempty"`
	Text     *string         `json:"text,omitempty"`
	Blob     *string         `json:"blob,omitempty"`
	_        json.RawMessage `json:"-"`
}

func marshalResourceContent(c ResourceContent) ([]byte, error) {
	switch v := c.(type) {
	case *TextResourceContent:
		return json.Marshal(resourceContentEnvelope{URI: v.URI, MimeType: v.MimeType, Text: &v.Text})
	case *BlobResourceContent:
		return json.Marshal(resourceContentEnvelope{URI: v.URI, MimeType: v.MimeType, Blob: &v.Blob})
	default:
		return nil, fmt.Errorf("unknown resource content type %T", c)
	}
}

func unmarshalResourceContent(raw json.RawMessage) (ResourceContent, error) {
	var env resourceContentEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch {
	case env.Text != nil:
		return &TextResourceContent{URI: env.URI, MimeType: env.MimeType, Text: *env.Text}, nil
	case env.Blob != nil:
		return &BlobResourceContent{URI: env.URI, MimeType: env.MimeType, Blob: *env.Blob}, nil
	default:
		return nil, &ParseError{Reason: "resource content has neither text nor blob"}
	}
}

// ListResourcesParams is the params of resources/list.
type ListResourcesParams struct {
	Cursor *string `json:"cursor,omitempty"`
}

// ListResourcesResult is the result of resources/list.
type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor *string    `json:"nextCursor,omitempty"`
}

// ListResourceTemplatesParams is the params of resources/templates/list.
type ListResourceTemplatesParams struct {
	Cursor *string `json:"cursor,omitempty"`
}

// ListResourceTemplatesResult is the result of resources/templates/list.
type ListResourceTemplatesResult struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	NextCursor        *string            `json:"nextCursor,omitempty"`
}

// ReadResourceParams is the params of resources/read.
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// ReadResourceResult is the result of resources/read. MarshalJSON/
// UnmarshalJSON handle the tagged Contents slice.
type ReadResourceResult struct {
	Contents []ResourceContent `json:"-"`
}

func (r ReadResourceResult) MarshalJSON() ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(r.Contents))
	for _, c := range r.Contents {
		b, err := marshalResourceContent(c)
		if err != nil {
			return nil, err
		}
		raws = append(raws, b)
	}
	return json.Marshal(struct {
		Contents []json.RawMessage `json:"contents"`
	}{Contents: raws})
}

func (r *ReadResourceResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Contents []json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	contents := make([]ResourceContent, 0, len(wire.Contents))
	for _, raw := range wire.Contents {
		c, err := unmarshalResourceContent(raw)
		if err != nil {
			return err
		}
		contents = append(contents, c)
	}
	r.Contents = contents
	return nil
}

// SubscribeResourceParams is the params of resources/subscribe and
// resources/unsubscribe.
type SubscribeResourceParams struct {
	URI string `json:"uri"`
}
