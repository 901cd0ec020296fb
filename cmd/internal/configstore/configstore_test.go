package configstore_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/landingzonehq/lza/cmd/internal/configstore"
)

// fakeS3 records uploads and serves canned list pages and object bodies.
type fakeS3 struct {
	uploads map[string]string
	pages   [][]string
	objects map[string]string

	listCalls int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		uploads: make(map[string]string),
		objects: make(map[string]string),
	}
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.uploads[aws.ToString(params.Key)] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body := f.objects[aws.ToString(params.Key)]
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.pages[f.listCalls]
	f.listCalls++

	contents := make([]s3types.Object, 0, len(page))
	for _, key := range page {
		contents = append(contents, s3types.Object{Key: aws.String(key)})
	}
	out := &s3.ListObjectsV2Output{Contents: contents}
	if f.listCalls < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String("next")
	}
	return out, nil
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPush(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "global-config.yaml", "homeRegion: us-east-1\n")
	writeFile(t, dir, filepath.Join("iam-policies", "boundary-policy.json"), "{}")
	writeFile(t, dir, "notes.txt", "not synced")

	client := newFakeS3()
	store := configstore.New(client, "config-bucket", "config")

	keys, err := store.Push(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"config/global-config.yaml", "config/iam-policies/boundary-policy.json"}
	if len(keys) != len(want) {
		t.Fatalf("pushed keys = %v, want %v", keys, want)
	}
	for i, key := range want {
		if keys[i] != key {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], key)
		}
	}

	if got := client.uploads["config/global-config.yaml"]; got != "homeRegion: us-east-1\n" {
		t.Errorf("uploaded body = %q", got)
	}
	if _, ok := client.uploads["config/notes.txt"]; ok {
		t.Error("notes.txt should not sync")
	}
}

func TestPushEmptyPrefix(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "accounts-config.yaml", "mandatoryAccounts: []\n")

	client := newFakeS3()
	store := configstore.New(client, "config-bucket", "")

	keys, err := store.Push(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "accounts-config.yaml" {
		t.Errorf("pushed keys = %v, want bare accounts-config.yaml", keys)
	}
}

func TestPull(t *testing.T) {
	t.Parallel()
	client := newFakeS3()
	client.pages = [][]string{
		{"config/global-config.yaml", "config/iam-policies/boundary-policy.json"},
		{"config/security-config.yaml"},
	}
	client.objects["config/global-config.yaml"] = "homeRegion: us-east-1\n"
	client.objects["config/iam-policies/boundary-policy.json"] = "{}"
	client.objects["config/security-config.yaml"] = "centralSecurityServices: {}\n"

	store := configstore.New(client, "config-bucket", "config/")
	dir := t.TempDir()

	written, err := store.Pull(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.listCalls != 2 {
		t.Errorf("expected pagination across 2 pages, got %d list calls", client.listCalls)
	}
	if len(written) != 3 {
		t.Fatalf("written = %v, want 3 entries", written)
	}

	body, err := os.ReadFile(filepath.Join(dir, "iam-policies", "boundary-policy.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "{}" {
		t.Errorf("pulled body = %q", body)
	}
}

func TestPullSkipsEscapingKeys(t *testing.T) {
	t.Parallel()
	client := newFakeS3()
	client.pages = [][]string{{"config/", "config/../escape.yaml", "config/global-config.yaml"}}
	client.objects["config/global-config.yaml"] = "homeRegion: us-east-1\n"

	store := configstore.New(client, "config-bucket", "config")
	dir := t.TempDir()

	written, err := store.Pull(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(written) != 1 || written[0] != "global-config.yaml" {
		t.Errorf("written = %v, want only global-config.yaml", written)
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.yaml")); err == nil {
		t.Error("escaping key must not be written outside the target directory")
	}
}
