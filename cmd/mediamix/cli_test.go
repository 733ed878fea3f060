// Package main tests document the expected behavior of the mediamix CLI.
//
// These are BLACK BOX tests - they test the CLI by executing the binary
// and checking stdout/stderr output.
//
// External dependencies mocked:
// - Spreadsheet export, drive API and generation webhook via httptest servers
// - Configuration via MEDIAMIX_* environment variables
package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

var binaryPath string

// TestMain builds the binary once before running tests.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "mediamix-test")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(dir, "mediamix")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = "."
	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(dir)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// runCLI executes the CLI binary with given arguments and environment.
func runCLI(t *testing.T, env map[string]string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()

	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	exitCode = 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("failed to run command: %v", err)
	}

	return outBuf.String(), errBuf.String(), exitCode
}

// runCLISimple runs CLI against the sample gallery.
func runCLISimple(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	return runCLI(t, map[string]string{"MEDIAMIX_SOURCE": "sample"}, args...)
}

// sheetServer serves scenario A: two rows, the newest appended last.
func sheetServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("links,name,type\nhttps://cdn.example.com/cat.png,Cat,image\nhttps://youtu.be/abc123,Dog,video\n"))
	}))
	t.Cleanup(server.Close)
	return server
}

func sheetEnv(url string) map[string]string {
	return map[string]string{
		"MEDIAMIX_SOURCE":          "spreadsheet",
		"MEDIAMIX_SPREADSHEET_URL": url,
	}
}

// TestRootCommand_Help verifies help output shows available commands.
func TestRootCommand_Help(t *testing.T) {
	stdout, _, _ := runCLISimple(t, "--help")
	output := strings.ToLower(stdout)

	expects := []string{"mediamix", "usage", "fetch", "watch", "serve", "generate", "open"}
	for _, want := range expects {
		if !strings.Contains(output, want) {
			t.Errorf("help should contain %q, got:\n%s", want, stdout)
		}
	}
}

// TestRootCommand_Version verifies version output.
func TestRootCommand_Version(t *testing.T) {
	stdout, _, _ := runCLISimple(t, "--version")

	if !strings.HasPrefix(stdout, "mediamix version ") {
		t.Errorf("version should show mediamix and version, got:\n%s", stdout)
	}
}

// TestFetchCommand_ShowsSampleGallery verifies the gallery shown before a
// backend is configured.
func TestFetchCommand_ShowsSampleGallery(t *testing.T) {
	stdout, _, exitCode := runCLISimple(t, "fetch")

	if exitCode != 0 {
		t.Fatalf("fetch should succeed, got exit code %d", exitCode)
	}
	for _, want := range []string{"AI Generated Landscape", "Motion Graphics Reel", "[VIDEO]"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output should contain %q, got:\n%s", want, stdout)
		}
	}
}

// TestFetchCommand_SpreadsheetNewestFirstWithYouTubeEmbed verifies scenario A
// end to end.
func TestFetchCommand_SpreadsheetNewestFirstWithYouTubeEmbed(t *testing.T) {
	server := sheetServer(t)

	stdout, stderr, exitCode := runCLI(t, sheetEnv(server.URL), "fetch", "--format", "json")
	if exitCode != 0 {
		t.Fatalf("fetch should succeed, got exit code %d:\n%s", exitCode, stderr)
	}

	var items []struct {
		Name  string `json:"name"`
		Type  string `json:"type"`
		Glyph string `json:"glyph"`
		Embed struct {
			Kind string `json:"kind"`
			Src  string `json:"src"`
		} `json:"embed"`
	}
	if err := json.Unmarshal([]byte(stdout), &items); err != nil {
		t.Fatalf("output should be JSON: %v\n%s", err, stdout)
	}
	if len(items) != 2 {
		t.Fatalf("user should see 2 items, got %d", len(items))
	}
	if items[0].Name != "Dog" || items[1].Name != "Cat" {
		t.Errorf("user should see newest row first, got %s, %s", items[0].Name, items[1].Name)
	}
	if items[0].Embed.Src != "https://www.youtube.com/embed/abc123" {
		t.Errorf("user should see YouTube embed, got %s", items[0].Embed.Src)
	}
	if items[0].Glyph != "video" {
		t.Errorf("user should see the video glyph for rows without a thumbnail, got %q", items[0].Glyph)
	}
}

// TestFetchCommand_FiltersByType verifies type and limit flags.
func TestFetchCommand_FiltersByType(t *testing.T) {
	server := sheetServer(t)

	stdout, _, exitCode := runCLI(t, sheetEnv(server.URL), "fetch", "--type", "image", "--format", "table")

	if exitCode != 0 {
		t.Fatalf("fetch should succeed, got exit code %d", exitCode)
	}
	if !strings.Contains(stdout, "Cat") || strings.Contains(stdout, "Dog") {
		t.Errorf("user filtering by image should only see Cat, got:\n%s", stdout)
	}
}

// TestFetchCommand_RejectsInvalidType verifies type validation.
func TestFetchCommand_RejectsInvalidType(t *testing.T) {
	_, stderr, exitCode := runCLISimple(t, "fetch", "--type", "audio")

	if exitCode == 0 {
		t.Error("should fail with invalid type")
	}
	if !strings.Contains(strings.ToLower(stderr), "invalid type") {
		t.Errorf("error should mention invalid type, got:\n%s", stderr)
	}
}

// TestFetchCommand_DriveWithoutCredentials verifies missing identifiers are
// reported without contacting the API.
func TestFetchCommand_DriveWithoutCredentials(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	_, stderr, exitCode := runCLI(t, map[string]string{
		"MEDIAMIX_SOURCE":          "drive",
		"MEDIAMIX_DRIVE_API_URL":   server.URL,
		"MEDIAMIX_DRIVE_FOLDER_ID": "folder",
	}, "fetch")

	if exitCode == 0 {
		t.Error("should fail without an API key")
	}
	if !strings.Contains(stderr, "not configured") {
		t.Errorf("error should say the source is not configured, got:\n%s", stderr)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("no request should be sent without credentials")
	}
}

// TestFetchCommand_RejectsUnknownSource verifies config validation.
func TestFetchCommand_RejectsUnknownSource(t *testing.T) {
	_, stderr, exitCode := runCLI(t, map[string]string{"MEDIAMIX_SOURCE": "ftp"}, "fetch")

	if exitCode == 0 {
		t.Error("should fail with an unknown source")
	}
	if !strings.Contains(stderr, "source.kind") {
		t.Errorf("error should name the invalid setting, got:\n%s", stderr)
	}
}

// TestOpenCommand_PrintsItemURL verifies open finds items by id.
func TestOpenCommand_PrintsItemURL(t *testing.T) {
	server := sheetServer(t)

	stdout, _, exitCode := runCLI(t, sheetEnv(server.URL), "open", "Dog", "--print")

	if exitCode != 0 {
		t.Fatalf("open should succeed, got exit code %d", exitCode)
	}
	if strings.TrimSpace(stdout) != "https://youtu.be/abc123" {
		t.Errorf("user should see the item URL, got %q", stdout)
	}
}

// TestOpenCommand_RequiresID verifies open needs an id argument.
func TestOpenCommand_RequiresID(t *testing.T) {
	_, _, exitCode := runCLISimple(t, "open")

	if exitCode == 0 {
		t.Error("should fail without an item id")
	}
}

// TestOpenCommand_UnknownID verifies a helpful error for missing items.
func TestOpenCommand_UnknownID(t *testing.T) {
	_, stderr, exitCode := runCLISimple(t, "open", "missing", "--print")

	if exitCode == 0 {
		t.Error("should fail for an unknown id")
	}
	if !strings.Contains(stderr, "item not found") {
		t.Errorf("error should say the item was not found, got:\n%s", stderr)
	}
}

// TestGenerateCommand_RejectsInvalidURL verifies validation happens first.
func TestGenerateCommand_RejectsInvalidURL(t *testing.T) {
	_, stderr, exitCode := runCLISimple(t, "generate", "not-a-url")

	if exitCode == 0 {
		t.Error("should fail with an invalid URL")
	}
	if !strings.Contains(stderr, "http://") {
		t.Errorf("error should explain the expected URL form, got:\n%s", stderr)
	}
}

// TestGenerateCommand_PostsToWebhook verifies the webhook receives the request.
func TestGenerateCommand_PostsToWebhook(t *testing.T) {
	received := make(chan map[string]string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- body
	}))
	defer server.Close()

	stdout, stderr, exitCode := runCLI(t, map[string]string{
		"MEDIAMIX_SOURCE":      "sample",
		"MEDIAMIX_WEBHOOK_URL": server.URL,
	}, "generate", "https://example.com/product", "--type", "video")

	if exitCode != 0 {
		t.Fatalf("generate should succeed, got exit code %d:\n%s", exitCode, stderr)
	}
	if !strings.Contains(stdout, "video is being generated") {
		t.Errorf("user should see confirmation, got:\n%s", stdout)
	}
	body := <-received
	if body["url"] != "https://example.com/product" || body["contentType"] != "video" || body["source"] != "url-generator" {
		t.Errorf("webhook should receive the request, got %v", body)
	}
}

// TestConfigCommand_ShowsSource verifies config shows the effective source.
func TestConfigCommand_ShowsSource(t *testing.T) {
	stdout, _, exitCode := runCLI(t, map[string]string{
		"MEDIAMIX_SOURCE":          "drive",
		"MEDIAMIX_DRIVE_FOLDER_ID": "folder-123",
		"MEDIAMIX_DRIVE_API_KEY":   "secret-key",
	}, "config")

	if exitCode != 0 {
		t.Fatalf("config should succeed, got exit code %d", exitCode)
	}
	if !strings.Contains(stdout, "Source: drive") || !strings.Contains(stdout, "folder-123") {
		t.Errorf("should show the drive source, got:\n%s", stdout)
	}
	if strings.Contains(stdout, "secret-key") {
		t.Error("config output should never show API keys")
	}
}
