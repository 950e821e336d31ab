package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestItemListResponseDecodesEnvelope(t *testing.T) {
	raw := `{"items":[{"id":1,"name":"Book","category":"Books","image_name":"cover.jpg"}]}`

	var resp ItemListResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Item{{ID: 1, Name: "Book", Category: "Books", ImageName: "cover.jpg"}}
	if diff := cmp.Diff(want, resp.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestItemListResponseDecodesBareArray(t *testing.T) {
	raw := ` [{"id":2,"name":"Pen","category":"Stationery","image_name":"pen.jpg"}]`

	var resp ItemListResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != 2 {
		t.Fatalf("unexpected items %#v", resp.Items)
	}
}

func TestItemListResponseEmptyEnvelope(t *testing.T) {
	var resp ItemListResponse
	if err := json.Unmarshal([]byte(`{}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", resp.Items)
	}
}

func TestItemListResponseRejectsGarbage(t *testing.T) {
	var resp ItemListResponse
	if err := json.Unmarshal([]byte(`{"items": "nope"}`), &resp); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCreateItemInputValidate(t *testing.T) {
	ok := CreateItemInput{Name: "Book", Category: "Books", Image: ImageName("cover.jpg")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cases := []CreateItemInput{
		{Category: "Books", Image: ImageName("cover.jpg")},
		{Name: "Book", Image: ImageName("cover.jpg")},
		{Name: "Book", Category: "Books"},
	}
	for i, in := range cases {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestImagePayloadKinds(t *testing.T) {
	if ImageName("a.jpg").IsFile() {
		t.Fatalf("name payload should not be a file")
	}
	if !ImageFile("a.jpg", []byte{}).IsFile() {
		t.Fatalf("empty byte slice still counts as a file")
	}
}
