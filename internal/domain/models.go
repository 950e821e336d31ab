package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Domain contains core models shared by the client, storage, and publishers.

// Item is a marketplace listing as served by the backend.
type Item struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImageName string `json:"image_name"`
}

// ItemListResponse is the decoded body of GET /items.
type ItemListResponse struct {
	Items []Item `json:"items"`
}

// UnmarshalJSON accepts both the {"items": [...]} envelope and a bare array.
func (r *ItemListResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		r.Items = items
		return nil
	}

	type envelope ItemListResponse
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	if env.Items == nil {
		env.Items = []Item{}
	}
	*r = ItemListResponse(env)
	return nil
}

// ImageReference is a server-assigned image filename.
type ImageReference = string

// ObjectURL is a process-local handle to a decoded blob. The holder must release it.
type ObjectURL string

func (u ObjectURL) String() string { return string(u) }

// Blob is the payload an ObjectURL points at.
type Blob struct {
	Data        []byte
	ContentType string
}

// EnrichedItem pairs an item with the ObjectURL of its image.
// ImageURL is empty when the image could not be fetched.
type EnrichedItem struct {
	Item
	ImageURL ObjectURL `json:"image_url,omitempty"`
}

// ImagePayload is either an image filename or raw image bytes.
type ImagePayload struct {
	Name string
	Data []byte
}

// ImageName builds a payload that submits the image as a plain form value.
func ImageName(name string) ImagePayload {
	return ImagePayload{Name: name}
}

// ImageFile builds a payload that uploads data as a file part named filename.
func ImageFile(filename string, data []byte) ImagePayload {
	return ImagePayload{Name: filename, Data: data}
}

// IsFile reports whether the payload carries binary content.
func (p ImagePayload) IsFile() bool { return p.Data != nil }

// IsZero reports whether no image was supplied.
func (p ImagePayload) IsZero() bool { return p.Name == "" && p.Data == nil }

// CreateItemInput is the form submitted to POST /items.
type CreateItemInput struct {
	Name     string
	Category string
	Image    ImagePayload
}

// Validate checks the required fields.
func (in CreateItemInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	if in.Category == "" {
		return fmt.Errorf("category is required")
	}
	if in.Image.IsZero() {
		return fmt.Errorf("image is required")
	}
	return nil
}
