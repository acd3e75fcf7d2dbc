package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/quickfind/pkg/config"
	"github.com/bastiangx/quickfind/pkg/search"
	"github.com/vmihailenco/msgpack/v5"
)

// runServer feeds encoded requests through a server instance and returns
// a decoder positioned after the initial ready message.
func runServer(t *testing.T, requests ...interface{}) *msgpack.Decoder {
	t.Helper()

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		if err := enc.Encode(req); err != nil {
			t.Fatalf("Encoding request: %v", err)
		}
	}

	engine := search.New[string]()
	var out bytes.Buffer
	srv := NewServerIO(engine, config.DefaultConfig(), &in, &out)

	if err := srv.Start(); err != nil {
		t.Fatalf("Server returned error: %v", err)
	}

	dec := msgpack.NewDecoder(&out)
	var ready map[string]string
	if err := dec.Decode(&ready); err != nil {
		t.Fatalf("Decoding ready message: %v", err)
	}
	if ready["status"] != "ready" {
		t.Fatalf("Expected ready handshake, got %v", ready)
	}
	return dec
}

func TestAddFindFlow(t *testing.T) {
	dec := runServer(t,
		IndexRequest{ID: "idx1", Action: "add", Item: "Hero", Keywords: "Walt Kowalski Jake Blues Shaun"},
		IndexRequest{ID: "idx2", Action: "add", Item: "Villain", Keywords: "Roy Batty Lord Voldemort Colonel Kurtz"},
		FindRequest{ID: "req1", Query: "walk", Limit: 5},
	)

	var add IndexResponse
	for _, id := range []string{"idx1", "idx2"} {
		if err := dec.Decode(&add); err != nil {
			t.Fatalf("Decoding add response: %v", err)
		}
		if add.ID != id || add.Status != "ok" {
			t.Fatalf("Unexpected add response: %+v", add)
		}
	}

	var found FindResponse
	if err := dec.Decode(&found); err != nil {
		t.Fatalf("Decoding find response: %v", err)
	}
	if found.ID != "req1" {
		t.Errorf("Response id mismatch: %q", found.ID)
	}
	if found.Count != 1 || len(found.Hits) != 1 {
		t.Fatalf("Expected exactly one hit for 'walk', got %+v", found)
	}
	if found.Hits[0].Item != "Hero" {
		t.Errorf("Expected 'Hero', got %q", found.Hits[0].Item)
	}
	if found.Hits[0].Keywords != nil {
		t.Error("Keywords should only be present on detail requests")
	}
}

func TestFindWithDetail(t *testing.T) {
	dec := runServer(t,
		IndexRequest{ID: "idx1", Action: "add", Item: "X", Keywords: "banana"},
		FindRequest{ID: "req1", Query: "ana", Detail: true},
	)

	var add IndexResponse
	if err := dec.Decode(&add); err != nil {
		t.Fatal(err)
	}

	var found FindResponse
	if err := dec.Decode(&found); err != nil {
		t.Fatal(err)
	}
	if len(found.Hits) != 1 {
		t.Fatalf("Expected one hit, got %+v", found)
	}
	hit := found.Hits[0]
	if hit.Score <= 0 {
		t.Errorf("Expected a positive score, got %f", hit.Score)
	}
	if len(hit.Keywords) != 1 || hit.Keywords[0] != "banana" {
		t.Errorf("Expected keyword detail, got %v", hit.Keywords)
	}
}

func TestStatsAndClear(t *testing.T) {
	dec := runServer(t,
		IndexRequest{ID: "idx1", Action: "add", Item: "X", Keywords: "banana"},
		IndexRequest{ID: "s1", Action: "stats"},
		IndexRequest{ID: "c1", Action: "clear"},
		IndexRequest{ID: "s2", Action: "stats"},
	)

	var resp IndexResponse
	if err := dec.Decode(&resp); err != nil { // add
		t.Fatal(err)
	}

	if err := dec.Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "s1" || resp.Items != 1 || resp.Keywords != 1 || resp.Fragments == 0 {
		t.Errorf("Unexpected stats after add: %+v", resp)
	}

	if err := dec.Decode(&resp); err != nil { // clear
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("Clear failed: %+v", resp)
	}

	// zero counts are omitted on the wire, so decode into a fresh value
	// rather than one still holding the earlier stats
	resp = IndexResponse{}
	if err := dec.Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "s2" || resp.Items != 0 || resp.Keywords != 0 || resp.Fragments != 0 {
		t.Errorf("Expected zeroed stats after clear: %+v", resp)
	}
}

func TestRemoveItem(t *testing.T) {
	dec := runServer(t,
		IndexRequest{ID: "idx1", Action: "add", Item: "X", Keywords: "banana"},
		IndexRequest{ID: "rm1", Action: "remove", Item: "X"},
		FindRequest{ID: "req1", Query: "ana"},
	)

	var resp IndexResponse
	for i := 0; i < 2; i++ {
		if err := dec.Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Status != "ok" {
			t.Fatalf("Op %d failed: %+v", i, resp)
		}
	}

	var found FindResponse
	if err := dec.Decode(&found); err != nil {
		t.Fatal(err)
	}
	if found.Count != 0 {
		t.Errorf("Removed item still matches: %+v", found)
	}
}

func TestValidationErrors(t *testing.T) {
	longQuery := make([]byte, 100)
	for i := range longQuery {
		longQuery[i] = 'a'
	}

	dec := runServer(t,
		FindRequest{ID: "bad1", Query: ""},
		FindRequest{ID: "bad2", Query: string(longQuery)},
		IndexRequest{ID: "bad3", Action: "add", Item: ""},
		IndexRequest{ID: "bad4", Action: "frobnicate"},
	)

	for _, id := range []string{"bad1", "bad2", "bad3", "bad4"} {
		var reqErr RequestError
		if err := dec.Decode(&reqErr); err != nil {
			t.Fatalf("Decoding error response for %s: %v", id, err)
		}
		if reqErr.ID != id {
			t.Errorf("Expected error for %s, got %+v", id, reqErr)
		}
		if reqErr.Code != 400 {
			t.Errorf("Expected 400 for %s, got %d", id, reqErr.Code)
		}
	}
}

func TestAddWithoutUsableKeywords(t *testing.T) {
	dec := runServer(t,
		IndexRequest{ID: "idx1", Action: "add", Item: "X", Keywords: "!!! ???"},
	)

	var resp IndexResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ignored" {
		t.Errorf("Expected ignored status, got %+v", resp)
	}
}

func TestLimitClamping(t *testing.T) {
	requests := []interface{}{}
	for i := 0; i < 70; i++ {
		requests = append(requests, IndexRequest{
			ID: "a", Action: "add",
			Item:     string(rune('A'+i%26)) + string(rune('0'+i/26)),
			Keywords: "keyword",
		})
	}
	requests = append(requests, FindRequest{ID: "req1", Query: "keyword", Limit: 1000})

	dec := runServer(t, requests...)

	var resp IndexResponse
	for i := 0; i < 70; i++ {
		if err := dec.Decode(&resp); err != nil {
			t.Fatal(err)
		}
	}

	var found FindResponse
	if err := dec.Decode(&found); err != nil {
		t.Fatal(err)
	}
	if found.Count != config.DefaultConfig().Server.MaxLimit {
		t.Errorf("Expected the limit clamped to max_limit, got %d hits", found.Count)
	}
}
