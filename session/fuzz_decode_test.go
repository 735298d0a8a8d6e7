package session

import (
	"encoding/json"
	"testing"
	"time"
)

// FuzzDecodeDocument exercises session file decoding with arbitrary bytes.
// Goal: no panics; undecodable input degrades to an empty document and
// undecodable records are rejected, never partially accepted.
func FuzzDecodeDocument(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("{}"))
	f.Add([]byte("not json at all"))
	f.Add([]byte(`{"tok":"not an object"}`))
	f.Add([]byte(`{"tok":{"user_id":123}}`))
	f.Add([]byte(`[1,2,3]`))

	valid, err := json.Marshal(map[string]Session{
		"tok": {
			ID:        "sess-1",
			UserID:    "alice",
			Role:      "editor",
			CSRFToken: "csrf",
			CreatedAt: time.Now().UTC(),
			ExpiresAt: time.Now().Add(time.Hour).UTC(),
		},
	})
	if err == nil {
		f.Add(valid)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		records := decodeDocument(data)

		for token, raw := range records {
			if token == "" {
				continue
			}
			s, ok := decodeRecord(raw)
			if !ok {
				continue
			}

			// Accepted records must carry the fields every consumer
			// depends on and survive a re-encode.
			if s.UserID == "" || s.ExpiresAt.IsZero() {
				t.Fatalf("accepted incomplete record: %+v", s)
			}
			reEncoded, err := json.Marshal(s)
			if err != nil {
				t.Fatalf("re-encode: %v", err)
			}
			s2, ok := decodeRecord(reEncoded)
			if !ok {
				t.Fatal("roundtrip decode rejected a valid record")
			}
			if s2.UserID != s.UserID || !s2.ExpiresAt.Equal(s.ExpiresAt) {
				t.Fatalf("roundtrip mismatch: %+v vs %+v", s2, s)
			}
		}
	})
}
