package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// Exercises a running server end to end: create -> mode -> turn -> blueprint -> delete.
// Usage: ECHO_API_URL=http://localhost:3000/api go run scripts/smoke_api.go

var client = &http.Client{Timeout: 3 * time.Minute}

func baseURL() string {
	if v := os.Getenv("ECHO_API_URL"); v != "" {
		return v
	}
	return "http://localhost:3000/api"
}

// Pretty print JSON helper
func printJSON(body []byte) {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(out.String())
}

func do(method, path, contentType string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequest(method, baseURL()+path, body)
	if err != nil {
		return nil, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp, raw, err
}

func step(title string, method, path, contentType string, body io.Reader) []byte {
	color.Yellow("\n%s", title)
	resp, raw, err := do(method, path, contentType, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 300 {
		color.Red("Status: %s", resp.Status)
		printJSON(raw)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	return raw
}

func main() {
	color.Cyan("🚀 Project Echo smoke test against %s\n", baseURL())

	step("1. Health", http.MethodGet, "/health", "", nil)
	printJSON(step("2. Personas", http.MethodGet, "/chat/v1/personas", "", nil))

	raw := step("3. Create session", http.MethodPost, "/chat/v1/session", "", nil)
	var created struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.Data.Id == "" {
		color.Red("Could not read session id: %v", err)
		os.Exit(1)
	}
	sessionPath := "/chat/v1/session/" + created.Data.Id
	fmt.Printf("Session: %s\n", created.Data.Id)

	turn, _ := json.Marshal(map[string]string{"prompt": "We have two weeks to ship a landing page. Where do we start?"})
	printJSON(step("4. Ensemble turn", http.MethodPost, sessionPath+"/turn", "application/json", bytes.NewReader(turn)))

	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	_ = w.WriteField("prompt", "Critique the attached brief in one paragraph.")
	part, _ := w.CreateFormFile("files", "brief.txt")
	_, _ = part.Write([]byte("Landing page for a note-taking app. Audience: students. Budget: zero."))
	_ = w.Close()

	mode, _ := json.Marshal(map[string]string{"mode": "exclusive", "persona_id": "storm"})
	step("5. Switch to Storm only", http.MethodPut, sessionPath+"/mode", "application/json", bytes.NewReader(mode))
	printJSON(step("6. Exclusive turn with upload", http.MethodPost, sessionPath+"/turn", w.FormDataContentType(), &form))

	report := step("7. Blueprint", http.MethodGet, sessionPath+"/blueprint", "", nil)
	fmt.Println(string(report))

	step("8. Delete session", http.MethodDelete, sessionPath, "", nil)
	color.Cyan("\n✅ Smoke test finished")
}
