package backend

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestListingNormalizesBareArrayAndEnvelope(t *testing.T) {
	var bare Listing[Color]
	if err := json.Unmarshal([]byte(`[{"id":1,"name":"Red","hex_code":"#FF0000"}]`), &bare); err != nil {
		t.Fatalf("decode bare array: %v", err)
	}

	var enveloped Listing[Color]
	if err := json.Unmarshal([]byte(`{"count":1,"next":null,"previous":null,"results":[{"id":1,"name":"Red","hex_code":"#FF0000"}]}`), &enveloped); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	want := []Color{{ID: 1, Name: "Red", HexCode: "#FF0000"}}
	if !reflect.DeepEqual(bare.Items(), want) {
		t.Fatalf("bare array decoded to %+v", bare.Items())
	}
	if !reflect.DeepEqual(enveloped.Items(), bare.Items()) {
		t.Fatalf("envelope %+v differs from bare %+v", enveloped.Items(), bare.Items())
	}
}

func TestListingPreservesOrder(t *testing.T) {
	var listing Listing[Category]
	payload := `{"results":[{"id":3,"name":"C"},{"id":1,"name":"A"},{"id":2,"name":"B"}]}`
	if err := json.Unmarshal([]byte(payload), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	ids := []int{}
	for _, c := range listing.Items() {
		ids = append(ids, c.ID)
	}
	if !reflect.DeepEqual(ids, []int{3, 1, 2}) {
		t.Fatalf("expected received order, got %v", ids)
	}
}

func TestListingOddShapesDecodeEmpty(t *testing.T) {
	cases := map[string]string{
		"null":             `null`,
		"object no result": `{"detail":"ok"}`,
		"results null":     `{"results":null}`,
		"scalar":           `"unexpected"`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var listing Listing[Source]
			if err := json.Unmarshal([]byte(payload), &listing); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if items := listing.Items(); items == nil || len(items) != 0 {
				t.Fatalf("expected empty non-nil items, got %#v", items)
			}
		})
	}
}

func TestListingPaginationMetadata(t *testing.T) {
	var listing Listing[Product]
	payload := `{"count":42,"next":"http://backend/api/products/?page=2","results":[{"id":1,"name":"Tęcza","base_price":"100.00"}]}`
	if err := json.Unmarshal([]byte(payload), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listing.Count() != 42 || !listing.HasMore() {
		t.Fatalf("unexpected pagination count=%d more=%v", listing.Count(), listing.HasMore())
	}
	if got := listing.Items()[0].BasePrice.String(); got != "100" {
		t.Fatalf("expected decimal string price to decode, got %s", got)
	}
}

func TestListingRejectsMalformedItems(t *testing.T) {
	var listing Listing[Color]
	if err := json.Unmarshal([]byte(`[{"id":"not-a-number"}]`), &listing); err == nil {
		t.Fatalf("expected decode error for malformed item")
	}
}
