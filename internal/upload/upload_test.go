package upload

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"rent-admin/internal/notify"
	"rent-admin/pkg/config"

	"github.com/pkg/errors"
)

// smallest valid PNG header, enough for content sniffing
var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newUploader(t *testing.T, handler http.HandlerFunc) (*Uploader, *notify.Center) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	notes := notify.NewCenter(nil)
	u := NewUploader(config.UploadConfig{
		BaseURL:      server.URL,
		CloudName:    "demo",
		UploadPreset: "cloths",
		MaxFileSize:  64,
	}, notes)
	return u, notes
}

func TestUploadSendsMultipart(t *testing.T) {
	u, _ := newUploader(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1_1/demo/image/upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if r.FormValue("upload_preset") != "cloths" || r.FormValue("cloud_name") != "demo" {
			t.Errorf("form = %v", r.MultipartForm.Value)
		}
		if _, hdr, err := r.FormFile("file"); err != nil || hdr.Filename != "a.png" {
			t.Errorf("file = %v %v", hdr, err)
		}
		w.Write([]byte(`{"secure_url":"https://cdn/a.png"}`))
	})

	url, err := u.Upload(context.Background(), File{Name: "a.png", Data: png})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://cdn/a.png" {
		t.Errorf("url = %q", url)
	}
}

func TestValidate(t *testing.T) {
	u, _ := newUploader(t, func(http.ResponseWriter, *http.Request) {})
	tests := []struct {
		name string
		file File
		ok   bool
	}{
		{"png by header", File{Name: "a", ContentType: "image/png", Data: png}, true},
		{"png sniffed", File{Name: "a", Data: png}, true},
		{"text", File{Name: "a.txt", ContentType: "text/plain", Data: []byte("hello")}, false},
		{"too large", File{Name: "big.png", ContentType: "image/png", Data: make([]byte, 65)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := u.Validate(tt.file)
			if (err == nil) != tt.ok {
				t.Errorf("Validate = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestUploadBatch(t *testing.T) {
	n := 0
	u, notes := newUploader(t, func(w http.ResponseWriter, r *http.Request) {
		n++
		fmt.Fprintf(w, `{"secure_url":"https://cdn/%d.png"}`, n)
	})
	ctx := context.Background()

	files := []File{
		{Name: "1.png", Data: png},
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("x")},
		{Name: "2.png", Data: png},
	}
	got, err := u.UploadBatch(ctx, []string{"https://old"}, files, 5)
	if err != nil {
		t.Fatalf("UploadBatch: %v", err)
	}
	want := []string{"https://old", "https://cdn/1.png", "https://cdn/2.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("urls = %v, want %v", got, want)
	}
	if msgs := notes.Drain(); len(msgs) != 1 || msgs[0].Message != "Please select only image files" {
		t.Errorf("notifications = %+v", msgs)
	}

	_, err = u.UploadBatch(ctx, []string{"a", "b", "c", "d"}, files[:2], 5)
	if !errors.Is(err, ErrTooManyImages) {
		t.Errorf("over cap = %v", err)
	}
	if n != 2 {
		t.Errorf("uploads = %d, rejected batch must not upload", n)
	}
}

func TestUploadBatchAbortsOnFailure(t *testing.T) {
	u, notes := newUploader(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	got, err := u.UploadBatch(context.Background(), []string{"https://old"}, []File{{Name: "1.png", Data: png}}, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !reflect.DeepEqual(got, []string{"https://old"}) {
		t.Errorf("urls = %v", got)
	}
	if msgs := notes.Drain(); len(msgs) != 1 || msgs[0].Message != "Error uploading files to Cloudinary" {
		t.Errorf("notifications = %+v", msgs)
	}
}
