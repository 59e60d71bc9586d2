package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocIsRegistered(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc returned error: %v", err)
	}

	var parsed struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("swagger doc is not valid JSON: %v", err)
	}

	if parsed.Info.Title != "SMS Sender API" {
		t.Errorf("unexpected title %q", parsed.Info.Title)
	}
	for _, path := range []string{"/api/v1/sms", "/api/v1/providers/{name}/credit", "/api/v1/scheduler/start"} {
		if _, ok := parsed.Paths[path]; !ok {
			t.Errorf("missing path %s", path)
		}
	}
}
