package dicom

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDicomRootCmd(t *testing.T) {
	cmd := NewDicomRootCmd()

	if cmd == nil {
		t.Fatal("Expected non-nil command")
	}

	if cmd.Use != "dicom [command]" {
		t.Errorf("Expected Use to be 'dicom [command]', got %q", cmd.Use)
	}

	if cmd.GroupID != "resources" {
		t.Errorf("Expected GroupID 'resources', got %q", cmd.GroupID)
	}

	if len(cmd.Commands()) != 5 {
		t.Errorf("Expected 5 subcommands, got %d", len(cmd.Commands()))
	}
}

func TestNewUploadCmd(t *testing.T) {
	cmd := NewUploadCmd()

	if cmd.Short == "" {
		t.Error("Expected non-empty Short description")
	}
	if cmd.Example == "" {
		t.Error("Expected non-empty Example")
	}

	flags := cmd.Flags()
	for _, name := range []string{"study", "idempotent", "threads", "max-upload-size"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected %q flag to exist", name)
		}
	}

	if flags.Lookup("threads").DefValue != "4" {
		t.Errorf("Expected threads to default to 4, got %q", flags.Lookup("threads").DefValue)
	}
	if flags.Lookup("max-upload-size").DefValue != "500MB" {
		t.Errorf("Expected max-upload-size to default to 500MB, got %q", flags.Lookup("max-upload-size").DefValue)
	}
}

func TestGatherFilesWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dcm"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.dcm"), []byte("b"), 0o600))

	single := filepath.Join(t.TempDir(), "c.dcm")
	require.NoError(t, os.WriteFile(single, []byte("c"), 0o600))

	files := gatherFiles([]string{dir, single})

	assert.Len(t, files, 3)
	assert.Contains(t, files, filepath.Join(dir, "a.dcm"))
	assert.Contains(t, files, filepath.Join(dir, "sub", "b.dcm"))
	assert.Contains(t, files, single)
}

func TestUploadFileSkipsNonDicomContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not an echo"), 0o600))

	// Never reaches the API, so a zero value client is enough.
	count := uploadFile(client.EncephalonApiClient{}, path, 1000, UploadOptions{})
	assert.Equal(t, int64(0), count)
}

func TestUploadFileSkipsOversizedDicom(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 256)
	path := filepath.Join(t.TempDir(), "large.dcm")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	count := uploadFile(client.EncephalonApiClient{}, path, 10, UploadOptions{})
	assert.Equal(t, int64(0), count)
}
