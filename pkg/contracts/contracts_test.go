// Package contracts checks the adapters against recorded responses of the
// real backends. Fixtures live in testdata/ and should be refreshed from the
// live APIs whenever a backend changes its response shape.
package contracts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/normalize"
	"github.com/gauthierbraillon/mediamix/internal/source"
)

// listed is the part of an item a gallery user identifies it by.
type listed struct {
	ID    string
	Name  string
	Type  content.Type
	URL   string
	Embed content.EmbedKind
	Src   string
}

func project(items []content.Item) []listed {
	out := make([]listed, 0, len(items))
	for _, item := range items {
		out = append(out, listed{item.ID, item.Name, item.Type, item.URL, item.Embed.Kind, item.Embed.Src})
	}
	return out
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "failed to read fixture %s", name)
	return data
}

func serveFixture(t *testing.T, contentType, name string, inspect func(*http.Request)) *httptest.Server {
	t.Helper()
	body := fixture(t, name)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func load(t *testing.T, cfg config.SourceConfig) []content.Item {
	t.Helper()
	src, err := source.New(cfg)
	require.NoError(t, err)
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	n := normalize.New(normalize.WithClock(func() time.Time { return time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC) }))
	return n.Normalize(records, src.Policy())
}

func TestContracts_FixturesAreValid(t *testing.T) {
	for _, name := range []string{"drive-files-list.json", "storage-object-list.json"} {
		if !json.Valid(fixture(t, name)) {
			t.Errorf("fixture %s is not valid JSON", name)
		}
	}
}

func TestSpreadsheetExport_MatchesPublishedCSV(t *testing.T) {
	server := serveFixture(t, "text/csv", "sheet-export.csv", nil)

	items := load(t, config.SourceConfig{
		Kind:        config.KindSpreadsheet,
		Spreadsheet: config.SpreadsheetConfig{URL: server.URL, Format: "csv"},
	})

	want := []listed{
		{"Brief", "Brief", content.TypeImage, "https://docs.example.com/brief", content.EmbedFrame, "https://docs.example.com/brief"},
		{"Reel", "Reel", content.TypeVideo, "https://vimeo.com/76979871", content.EmbedVimeo, "https://player.vimeo.com/video/76979871"},
		{"Dog", "Dog", content.TypeVideo, "https://www.youtube.com/watch?v=abc123&t=10s", content.EmbedYouTube, "https://www.youtube.com/embed/abc123"},
		{"Cat", "Cat", content.TypeImage, "https://cdn.example.com/cat.png", content.EmbedImage, "https://cdn.example.com/cat.png"},
	}
	if diff := cmp.Diff(want, project(items)); diff != "" {
		t.Errorf("spreadsheet items mismatch (-want +got):\n%s", diff)
	}
}

func TestStorageListing_MatchesObjectListAPI(t *testing.T) {
	var request map[string]interface{}
	server := serveFixture(t, "application/json", "storage-object-list.json", func(r *http.Request) {
		if r.URL.Path != "/storage/v1/object/list/media" {
			t.Errorf("unexpected listing path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &request)
	})

	items := load(t, config.SourceConfig{
		Kind:   config.KindBucket,
		Bucket: config.BucketConfig{BaseURL: server.URL, Bucket: "media", Prefix: "generated", APIKey: "anon"},
	})

	public := server.URL + "/storage/v1/object/public/media/generated/"
	want := []listed{
		{"5b0c2a6e-1111-4000-8000-000000000001", "robot dog", content.TypeVideo, public + "robot%20dog.webm", content.EmbedFrame, public + "robot%20dog.webm"},
		{"7f3d9b1c-2222-4000-8000-000000000002", "sunset", content.TypeImage, public + "sunset.v2.jpg", content.EmbedImage, public + "sunset.v2.jpg"},
	}
	if diff := cmp.Diff(want, project(items)); diff != "" {
		t.Errorf("storage items mismatch (-want +got):\n%s", diff)
	}
	if request["prefix"] != "generated/" || request["limit"] != float64(100) {
		t.Errorf("listing request should ask for 100 objects under the prefix, got %v", request)
	}
}

func TestDriveFilesList_MatchesFilesAPI(t *testing.T) {
	server := serveFixture(t, "application/json", "drive-files-list.json", func(r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "'folder-123' in parents" {
			t.Errorf("unexpected folder query %q", got)
		}
	})

	items := load(t, config.SourceConfig{
		Kind:  config.KindDrive,
		Drive: config.DriveConfig{BaseURL: server.URL, FolderID: "folder-123", APIKey: "key"},
	})

	require.Len(t, items, 3)
	gotTypes := []content.Type{items[0].Type, items[1].Type, items[2].Type}
	if diff := cmp.Diff([]content.Type{content.TypeVideo, content.TypeImage, content.TypeText}, gotTypes); diff != "" {
		t.Errorf("drive types mismatch (-want +got):\n%s", diff)
	}
	if items[0].CreatedAt != "2024-01-19" {
		t.Errorf("drive timestamps should be shown as dates, got %q", items[0].CreatedAt)
	}
	if items[2].ThumbnailURL != "" {
		t.Errorf("documents without thumbnails should keep an empty thumbnail, got %q", items[2].ThumbnailURL)
	}
}
